// Package variants is the dispatch table for field variants. Each entry
// carries the palette defaults, the value shape used by schema derivation,
// sample options for choice controls, and the component catalogue link for
// variants that need a component outside the base UI kit. Code generation and
// the preview dispatcher key their own per-variant behaviour by the names
// registered here.
package variants

import "github.com/goliatone/go-formbuilder/pkg/model"

// Kind is the shape of a variant's value.
type Kind string

const (
	KindText   Kind = "text"
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindList   Kind = "list"
	KindDate   Kind = "date"
	// KindAny is used for variants the table does not know.
	KindAny Kind = "any"
)

// Constraint describes the type-specific validation seed of a variant.
type Constraint struct {
	Kind Kind
	// Agreement marks a single agreement checkbox: required means it must be
	// checked.
	Agreement bool
	// Pattern is an anchored regular expression applied to non-empty values.
	Pattern string
	// PatternLabel names the expected shape in messages ("phone number").
	PatternLabel string
	// Length is the exact length of fixed-length codes, zero when unused.
	Length int
	// DefaultMin and DefaultMax apply to numeric variants when the field does
	// not set its own bounds.
	DefaultMin *float64
	DefaultMax *float64
	// Format is a named string format ("email").
	Format string
}

// Option is one choice of a select-like control.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Variant is one dispatch table entry.
type Variant struct {
	Name       string
	Defaults   model.Defaults
	Constraint Constraint
	Options    []Option
	// Special is the catalogue slug for variants that need an extra
	// component; empty for base kit controls.
	Special string
}

// Known reports whether v came from the table rather than the fallback.
func (v Variant) Known() bool {
	return v.Constraint.Kind != KindAny && v.Constraint.Kind != ""
}

func (v Variant) clone() Variant {
	out := v
	if len(v.Options) > 0 {
		out.Options = append([]Option(nil), v.Options...)
	}
	return out
}
