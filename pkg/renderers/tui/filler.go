package tui

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// Filler prompts a value for every field of a list, checking each answer
// against the rule derived for the field.
type Filler struct {
	cfg config
}

// NewFiller returns a filler with the given options.
func NewFiller(options ...Option) *Filler {
	return &Filler{cfg: newConfig(options)}
}

// ContentType reports the serialization format used by Render.
func (f *Filler) ContentType() string {
	switch f.cfg.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Fill prompts every enabled field in order and validates the collected
// values. Disabled fields keep their prefilled or default value. errs are
// shown before the matching prompt.
func (f *Filler) Fill(ctx context.Context, list model.FieldList, prefill map[string]any, errs map[string][]string) (schema.Result, error) {
	if err := ctx.Err(); err != nil {
		return schema.Result{}, err
	}
	spec := schema.DeriveValidation(list, schema.WithTable(f.cfg.table))
	defaults := schema.DeriveDefaults(list, schema.WithTable(f.cfg.table))
	if defaults == nil {
		defaults = make(map[string]any, len(prefill))
	}
	maps.Copy(defaults, prefill)
	state := NewState(defaults, errs)

	fields := make(map[string]model.Field)
	for _, field := range model.Flatten(list) {
		fields[field.Name] = field
	}

	for _, rule := range spec.Rules {
		field := fields[rule.Name]
		if field.Disabled {
			continue
		}
		if err := f.promptField(ctx, field, rule, state); err != nil {
			return schema.Result{}, err
		}
	}
	return schema.Validate(spec, state.Values()), nil
}

// Render fills list and serializes the valid values in the configured
// output format. Invalid submissions return a *ValidationError.
func (f *Filler) Render(ctx context.Context, list model.FieldList, prefill map[string]any) ([]byte, error) {
	result, err := f.Fill(ctx, list, prefill, nil)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Issues: result.Issues}
	}
	return f.serialize(result.Values)
}

// ValidationError reports the issues of an invalid fill.
type ValidationError struct {
	Issues []schema.Issue
}

func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		messages[i] = issue.Message
	}
	return "tui: invalid values: " + strings.Join(messages, "; ")
}

func (f *Filler) promptField(ctx context.Context, field model.Field, rule schema.Rule, state *State) error {
	for _, msg := range state.ErrorsFor(rule.Name) {
		_ = f.cfg.driver.Info(ctx, f.cfg.theme.ErrorPrefix+msg)
	}
	label := rule.DisplayName()
	help := field.Description
	current, _ := state.Get(rule.Name)
	options := f.cfg.table.OptionsFor(field)

	for {
		raw, err := f.ask(ctx, field, rule, label, help, current, options)
		if err != nil {
			return err
		}
		value, issue := schema.ValidateField(rule, raw)
		if issue != nil {
			_ = f.cfg.driver.Info(ctx, f.cfg.theme.ErrorPrefix+issue.Message)
			continue
		}
		if value == nil {
			state.Unset(rule.Name)
		} else {
			state.Set(rule.Name, value)
		}
		return nil
	}
}

func (f *Filler) ask(ctx context.Context, field model.Field, rule schema.Rule, label, help string, current any, options []variants.Option) (any, error) {
	d := f.cfg.driver
	switch rule.Kind {
	case variants.KindBool:
		b, _ := current.(bool)
		return d.Confirm(ctx, ConfirmConfig{Message: label, Default: b, Help: help})

	case variants.KindList:
		selected := toStrings(current)
		if len(options) == 0 {
			raw, err := d.Input(ctx, InputConfig{
				Message:  label,
				Default:  strings.Join(selected, ", "),
				Help:     "Separate values with commas.",
				Required: rule.Required,
			})
			if err != nil {
				return nil, err
			}
			return splitList(raw), nil
		}
		labels, values := optionLists(options)
		var defaults []int
		for _, value := range selected {
			if i := indexOf(values, value); i >= 0 {
				defaults = append(defaults, i)
			}
		}
		picked, err := d.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  labels,
			Defaults: defaults,
			Help:     help,
			PageSize: f.cfg.pageSize,
		})
		if err != nil {
			return nil, err
		}
		return valuesFromIndices(values, picked), nil

	case variants.KindNumber:
		return d.Input(ctx, InputConfig{
			Message:  label,
			Default:  stringOf(current),
			Help:     help,
			Required: rule.Required,
		})
	}

	if len(options) > 0 {
		labels, values := optionLists(options)
		idx, err := d.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: indexOf(values, stringOf(current)),
			Help:         help,
			PageSize:     f.cfg.pageSize,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return "", nil
		}
		return values[idx], nil
	}

	cfg := InputConfig{Message: label, Default: stringOf(current), Help: help, Required: rule.Required}
	switch {
	case strings.EqualFold(field.Variant, variants.Password):
		return d.Password(ctx, cfg)
	case strings.EqualFold(field.Variant, variants.Textarea):
		return d.TextArea(ctx, TextAreaConfig{Message: label, Default: cfg.Default, Help: help})
	case rule.Kind == variants.KindDate && help == "":
		cfg.Help = "Use YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339."
	}
	return d.Input(ctx, cfg)
}

func (f *Filler) serialize(values map[string]any) ([]byte, error) {
	switch f.cfg.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.MarshalIndentWithOption(values, "", "  ", json.DisableHTMLEscape())
	}
}

func optionLists(options []variants.Option) (labels, values []string) {
	labels = make([]string, len(options))
	values = make([]string, len(options))
	for i, option := range options {
		labels[i] = option.Label
		values[i] = option.Value
	}
	return labels, values
}

func valuesFromIndices(options []string, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				flattened.Add(key, item)
			}
		case nil:
		default:
			flattened.Set(key, fmt.Sprint(v))
		}
	}
	return flattened.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		switch v := values[key].(type) {
		case []string:
			fmt.Fprintf(&b, "%s=%s\n", key, strings.Join(v, ", "))
		default:
			fmt.Fprintf(&b, "%s=%v\n", key, v)
		}
	}
	return b.String()
}
