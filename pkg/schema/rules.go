// Package schema derives the validation rules and default values of a field
// list. The same Spec feeds value validation, the OpenAPI export and the
// schema text emitted by code generation, so every view of a form applies the
// same field-to-rule mapping.
package schema

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// Rule is the derived constraint set of one field.
type Rule struct {
	Name    string
	Label   string
	Variant string
	Path    model.Path
	Kind    variants.Kind

	Required bool
	// MustBeTrue is set for required agreement checkboxes.
	MustBeTrue bool

	Min  *float64
	Max  *float64
	Step *float64

	// Length is the exact character count of fixed-length codes.
	Length       int
	Pattern      string
	PatternLabel string
	Format       string

	// Passthrough marks variants without a known value shape: only presence
	// is checked.
	Passthrough bool
}

// Optional reports whether any value, including an absent one, is accepted
// when it is empty.
func (r Rule) Optional() bool {
	return !r.Required
}

// DisplayName is the label used in messages, falling back to the field name.
func (r Rule) DisplayName() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Name
}

// StepBase is the value steps are counted from: the lower bound when one is
// set, otherwise zero.
func (r Rule) StepBase() float64 {
	if r.Min != nil {
		return *r.Min
	}
	return 0
}

// StepMessage is the message reported for a value off the step grid.
func (r Rule) StepMessage() string {
	if r.Step == nil {
		return ""
	}
	if base := r.StepBase(); base != 0 {
		return fmt.Sprintf("%s must be in steps of %s from %s", r.DisplayName(), formatFloat(*r.Step), formatFloat(base))
	}
	return fmt.Sprintf("%s must be a multiple of %s", r.DisplayName(), formatFloat(*r.Step))
}

// OnStep reports whether n lies on the step grid of the rule.
func (r Rule) OnStep(n float64) bool {
	if r.Step == nil {
		return true
	}
	return isMultiple(n-r.StepBase(), *r.Step)
}

// Spec is the ordered rule list of a form, in flattened field order.
type Spec struct {
	Rules []Rule
	index map[string]int
}

// Rule returns the rule for name.
func (s Spec) Rule(name string) (Rule, bool) {
	if idx, ok := s.index[name]; ok {
		return s.Rules[idx], true
	}
	for _, rule := range s.Rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}

// Names returns the rule names in order.
func (s Spec) Names() []string {
	names := make([]string, len(s.Rules))
	for i, rule := range s.Rules {
		names[i] = rule.Name
	}
	return names
}

// Option customises derivation.
type Option func(*options)

type options struct {
	table *variants.Table
}

// WithTable derives rules from a custom variant table instead of the
// built-in one.
func WithTable(table *variants.Table) Option {
	return func(o *options) {
		if table != nil {
			o.table = table
		}
	}
}

func newOptions(opts []Option) options {
	cfg := options{table: variants.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// DeriveValidation walks the flattened list and builds one rule per field.
// Numeric bounds apply only to numeric variants; pattern and length rules
// only to variants with a fixed value shape. Unknown variants get a
// passthrough rule.
func DeriveValidation(list model.FieldList, opts ...Option) Spec {
	cfg := newOptions(opts)
	spec := Spec{index: make(map[string]int)}

	for i, entry := range list {
		for j, field := range entry.Fields {
			path := model.Path{i}
			if entry.Grouped {
				path = model.Path{i, j}
			}
			rule := ruleFor(cfg.table, field)
			rule.Path = path
			if _, dup := spec.index[rule.Name]; !dup {
				spec.index[rule.Name] = len(spec.Rules)
			}
			spec.Rules = append(spec.Rules, rule)
		}
	}
	return spec
}

func ruleFor(table *variants.Table, field model.Field) Rule {
	constraint := table.Constraint(field)
	rule := Rule{
		Name:     field.Name,
		Label:    field.Label,
		Variant:  field.Variant,
		Kind:     constraint.Kind,
		Required: field.Required,
	}

	switch constraint.Kind {
	case variants.KindAny:
		rule.Passthrough = true
	case variants.KindBool:
		rule.MustBeTrue = constraint.Agreement && field.Required
	case variants.KindNumber:
		rule.Min = firstFloat(field.Min, constraint.DefaultMin)
		rule.Max = firstFloat(field.Max, constraint.DefaultMax)
		if field.Step != nil && *field.Step > 0 {
			step := *field.Step
			rule.Step = &step
		}
	case variants.KindText:
		rule.Length = constraint.Length
		rule.Pattern = constraint.Pattern
		rule.PatternLabel = constraint.PatternLabel
		rule.Format = constraint.Format
	}
	return rule
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			out := *v
			return &out
		}
	}
	return nil
}
