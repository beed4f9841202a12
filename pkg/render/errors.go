package render

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// field name and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload groups payload messages by the field names of list. Keys
// may be plain names or JSON pointers such as "/values/name_1". Keys that
// name no field become form-level messages.
func MapErrorPayload(list model.FieldList, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	names := fieldNames(list)
	for rawKey, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		name := fieldKey(rawKey)
		if _, ok := names[name]; !ok || isFormLevelKey(rawKey) {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapIssues groups validation issues by the field they belong to. Issues
// for names list does not hold become form-level messages.
func MapIssues(list model.FieldList, issues []schema.Issue) ErrorMapping {
	payload := make(map[string][]string, len(issues))
	for _, issue := range issues {
		key := issue.Field
		if key == "" {
			key = issue.Path
		}
		payload[key] = append(payload[key], issue.Message)
	}
	return MapErrorPayload(list, payload)
}

// Merge folds other into m, keeping message order and dropping duplicates.
func (m ErrorMapping) Merge(other ErrorMapping) ErrorMapping {
	out := ErrorMapping{Form: MergeFormErrors(m.Form, other.Form...)}
	if len(m.Fields)+len(other.Fields) > 0 {
		out.Fields = make(map[string][]string, len(m.Fields)+len(other.Fields))
		for name, msgs := range m.Fields {
			out.Fields[name] = append(out.Fields[name], msgs...)
		}
		for name, msgs := range other.Fields {
			out.Fields[name] = normalizeMessages(append(out.Fields[name], msgs...))
		}
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// fieldKey reduces a payload key to a field name. Keys are either plain
// names or JSON pointers such as "/values/tags/0": the leading slash and a
// "values" or "data" wrapper are dropped and the next segment names the
// field.
func fieldKey(raw string) string {
	key := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if !strings.HasPrefix(key, "/") {
		return key
	}
	segments := strings.Split(strings.TrimPrefix(key, "/"), "/")
	if len(segments) > 1 && (segments[0] == "values" || segments[0] == "data") {
		segments = segments[1:]
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(segments[0])
}

func fieldNames(list model.FieldList) map[string]struct{} {
	dest := make(map[string]struct{})
	for _, field := range model.Flatten(list) {
		if name := strings.TrimSpace(field.Name); name != "" {
			dest[name] = struct{}{}
		}
	}
	return dest
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
