package model

import (
	"slices"

	json "github.com/goccy/go-json"
)

// Attribute names accepted by Patch.Unset.
const (
	AttrMin    = "min"
	AttrMax    = "max"
	AttrStep   = "step"
	AttrHour12 = "hour12"
)

// Patch is a partial update. Nil members leave the attribute untouched.
// Unset clears optional numeric/boolean attributes; an Extensions entry with a
// nil or "null" raw value deletes that key.
type Patch struct {
	Type        *string                    `json:"type,omitempty"`
	Variant     *string                    `json:"variant,omitempty"`
	Name        *string                    `json:"name,omitempty"`
	Label       *string                    `json:"label,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Placeholder *string                    `json:"placeholder,omitempty"`
	Value       *Value                     `json:"value,omitempty"`
	Checked     *bool                      `json:"checked,omitempty"`
	Disabled    *bool                      `json:"disabled,omitempty"`
	Required    *bool                      `json:"required,omitempty"`
	Min         *float64                   `json:"min,omitempty"`
	Max         *float64                   `json:"max,omitempty"`
	Step        *float64                   `json:"step,omitempty"`
	Locale      *string                    `json:"locale,omitempty"`
	Hour12      *bool                      `json:"hour12,omitempty"`
	ClassName   *string                    `json:"className,omitempty"`
	RowIndex    *int                       `json:"rowIndex,omitempty"`
	Extensions  map[string]json.RawMessage `json:"extensions,omitempty"`
	Unset       []string                   `json:"unset,omitempty"`
}

// Apply returns a copy of field with the patch merged in. field is not
// modified.
func (p Patch) Apply(field Field) Field {
	out := field.Clone()
	setString(&out.Type, p.Type)
	setString(&out.Variant, p.Variant)
	setString(&out.Name, p.Name)
	setString(&out.Label, p.Label)
	setString(&out.Description, p.Description)
	setString(&out.Placeholder, p.Placeholder)
	setString(&out.Locale, p.Locale)
	setString(&out.ClassName, p.ClassName)
	if p.Value != nil {
		out.Value = p.Value.Clone()
	}
	setBool(&out.Checked, p.Checked)
	setBool(&out.Disabled, p.Disabled)
	setBool(&out.Required, p.Required)
	if p.Min != nil {
		out.Min = Float(*p.Min)
	}
	if p.Max != nil {
		out.Max = Float(*p.Max)
	}
	if p.Step != nil {
		out.Step = Float(*p.Step)
	}
	if p.Hour12 != nil {
		out.Hour12 = Bool(*p.Hour12)
	}
	if p.RowIndex != nil {
		out.RowIndex = *p.RowIndex
	}
	for _, attr := range p.Unset {
		switch attr {
		case AttrMin:
			out.Min = nil
		case AttrMax:
			out.Max = nil
		case AttrStep:
			out.Step = nil
		case AttrHour12:
			out.Hour12 = nil
		}
	}
	for key, raw := range p.Extensions {
		if len(raw) == 0 || string(raw) == "null" {
			delete(out.Extensions, key)
			continue
		}
		if out.Extensions == nil {
			out.Extensions = make(map[string]json.RawMessage)
		}
		out.Extensions[key] = slices.Clone(raw)
	}
	if len(out.Extensions) == 0 {
		out.Extensions = nil
	}
	return out
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Type == nil && p.Variant == nil && p.Name == nil && p.Label == nil &&
		p.Description == nil && p.Placeholder == nil && p.Value == nil &&
		p.Checked == nil && p.Disabled == nil && p.Required == nil &&
		p.Min == nil && p.Max == nil && p.Step == nil && p.Locale == nil &&
		p.Hour12 == nil && p.ClassName == nil && p.RowIndex == nil &&
		len(p.Extensions) == 0 && len(p.Unset) == 0
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
