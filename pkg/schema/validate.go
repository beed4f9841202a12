package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// Issue codes reported by Validate.
const (
	CodeRequired      = "required"
	CodeInvalidType   = "invalid_type"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeDomainRange   = "domain_range"
)

// DateLayouts are the accepted encodings of date values.
var DateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Issue is a single failed constraint.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of validating a value map against a Spec. Values
// holds the coerced values of the fields the spec knows about; empty numeric
// and boolean values are left out.
type Result struct {
	Valid  bool           `json:"valid"`
	Issues []Issue        `json:"issues,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

// FieldErrors groups issue messages by field name.
func (r Result) FieldErrors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Validate checks values against every rule of spec. Keys without a rule are
// ignored. At most one issue is reported per field.
func Validate(spec Spec, values map[string]any) Result {
	result := Result{Valid: true, Values: make(map[string]any, len(spec.Rules))}
	for _, rule := range spec.Rules {
		raw, present := values[rule.Name]
		coerced, keep, issue := check(rule, raw, present)
		if issue != nil {
			result.Valid = false
			result.Issues = append(result.Issues, *issue)
			continue
		}
		if keep {
			result.Values[rule.Name] = coerced
		}
	}
	return result
}

// ValidateField checks a single value against rule and returns the coerced
// value or the failed constraint.
func ValidateField(rule Rule, value any) (any, *Issue) {
	coerced, _, issue := check(rule, value, true)
	return coerced, issue
}

func check(rule Rule, raw any, present bool) (any, bool, *Issue) {
	fail := func(code, format string, args ...any) (any, bool, *Issue) {
		return nil, false, &Issue{
			Path:    rule.Path.String(),
			Field:   rule.Name,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		}
	}

	if rule.MustBeTrue {
		b, ok := coerceBool(raw)
		if !present || !ok || !b {
			return fail(CodeRequired, "%s must be checked", rule.DisplayName())
		}
		return true, true, nil
	}

	if !present || isEmpty(raw) {
		if rule.Required {
			return fail(CodeRequired, "%s is required", rule.DisplayName())
		}
		if !present || raw == nil || rule.Kind == variants.KindNumber || rule.Kind == variants.KindBool {
			return nil, false, nil
		}
		return emptyOf(rule, raw), true, nil
	}

	switch rule.Kind {
	case variants.KindText:
		s, ok := raw.(string)
		if !ok {
			return fail(CodeInvalidType, "%s must be text", rule.DisplayName())
		}
		if rule.Length > 0 {
			n := utf8.RuneCountInString(s)
			if n < rule.Length {
				return fail(CodeTooShort, "%s must be %d characters", rule.DisplayName(), rule.Length)
			}
			if n > rule.Length {
				return fail(CodeTooLong, "%s must be %d characters", rule.DisplayName(), rule.Length)
			}
		}
		if rule.Pattern != "" {
			re, err := compile(rule.Pattern)
			if err != nil {
				return fail(CodePattern, "%s has an invalid pattern: %v", rule.DisplayName(), err)
			}
			if !re.MatchString(s) {
				code := CodePattern
				if rule.Format != "" {
					code = CodeInvalidFormat
				}
				label := rule.PatternLabel
				if label == "" {
					label = "the expected format"
				}
				return fail(code, "%s must be a valid %s", rule.DisplayName(), label)
			}
		}
		return s, true, nil

	case variants.KindNumber:
		n, ok := coerceNumber(raw)
		if !ok {
			return fail(CodeInvalidType, "%s must be a number", rule.DisplayName())
		}
		if rule.Min != nil && n < *rule.Min {
			return fail(CodeTooSmall, "%s must be at least %s", rule.DisplayName(), formatFloat(*rule.Min))
		}
		if rule.Max != nil && n > *rule.Max {
			return fail(CodeTooBig, "%s must be at most %s", rule.DisplayName(), formatFloat(*rule.Max))
		}
		if !rule.OnStep(n) {
			return fail(CodeDomainRange, "%s", rule.StepMessage())
		}
		return n, true, nil

	case variants.KindBool:
		b, ok := coerceBool(raw)
		if !ok {
			return fail(CodeInvalidType, "%s must be true or false", rule.DisplayName())
		}
		return b, true, nil

	case variants.KindList:
		items, ok := coerceStrings(raw)
		if !ok {
			return fail(CodeInvalidType, "%s must be a list of values", rule.DisplayName())
		}
		return items, true, nil

	case variants.KindDate:
		switch typed := raw.(type) {
		case time.Time:
			return typed.Format(time.RFC3339), true, nil
		case string:
			if _, ok := parseDate(typed); !ok {
				return fail(CodeInvalidFormat, "%s must be a valid date", rule.DisplayName())
			}
			return typed, true, nil
		default:
			return fail(CodeInvalidType, "%s must be a date", rule.DisplayName())
		}

	default:
		return raw, true, nil
	}
}

// isEmpty applies the per-kind emptiness test used by presence checks.
func isEmpty(raw any) bool {
	switch typed := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	default:
		return false
	}
}

func emptyOf(rule Rule, raw any) any {
	switch rule.Kind {
	case variants.KindList:
		return []string{}
	case variants.KindText, variants.KindDate:
		return ""
	default:
		return raw
	}
}

func coerceNumber(raw any) (float64, bool) {
	switch typed := raw.(type) {
	case float64:
		return typed, !math.IsNaN(typed) && !math.IsInf(typed, 0)
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		n, err := typed.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func coerceBool(raw any) (bool, bool) {
	switch typed := raw.(type) {
	case bool:
		return typed, true
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "on":
			return true, true
		case "false", "off":
			return false, true
		}
	}
	return false, false
}

func coerceStrings(raw any) ([]string, bool) {
	switch typed := raw.(type) {
	case []string:
		return append([]string(nil), typed...), true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if ts, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// isMultiple reports whether n is an integer multiple of step, tolerating
// floating point error.
func isMultiple(n, step float64) bool {
	if step <= 0 {
		return true
	}
	q := n / step
	return math.Abs(q-math.Round(q)) < 1e-9
}

func formatFloat(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var patternCache sync.Map

func compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}
