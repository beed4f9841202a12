package model

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ValueKind identifies which member of the Value union is populated.
type ValueKind uint8

const (
	// KindString is the zero kind so an unset Value reads as "".
	KindString ValueKind = iota
	KindBool
	KindNumber
	KindStrings
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindStrings:
		return "string[]"
	default:
		return "unknown"
	}
}

// Value holds a field's current or default value: a string, a boolean, a
// number, or an ordered sequence of strings.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	Num  float64
	Strs []string
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// StringsValue wraps a string sequence. A nil slice is stored as empty so the
// value always serialises as an array.
func StringsValue(values ...string) Value {
	out := make([]string, len(values))
	copy(out, values)
	return Value{Kind: KindStrings, Strs: out}
}

// ValueOf converts a decoded JSON value (string, bool, float64, []string or
// []any of strings) into a Value.
func ValueOf(v any) (Value, error) {
	switch typed := v.(type) {
	case nil:
		return StringValue(""), nil
	case string:
		return StringValue(typed), nil
	case bool:
		return BoolValue(typed), nil
	case float64:
		return NumberValue(typed), nil
	case float32:
		return NumberValue(float64(typed)), nil
	case int:
		return NumberValue(float64(typed)), nil
	case int64:
		return NumberValue(float64(typed)), nil
	case json.Number:
		n, err := typed.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("model: invalid number %q: %w", typed, err)
		}
		return NumberValue(n), nil
	case []string:
		return StringsValue(typed...), nil
	case []any:
		out := make([]string, 0, len(typed))
		for idx, item := range typed {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("model: value item %d is %T, want string", idx, item)
			}
			out = append(out, s)
		}
		return StringsValue(out...), nil
	case Value:
		return typed.Clone(), nil
	default:
		return Value{}, fmt.Errorf("model: unsupported value type %T", v)
	}
}

// Interface returns the plain Go representation of the value.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindStrings:
		return slices.Clone(v.Strs)
	default:
		return v.Str
	}
}

// IsEmpty reports whether the value is the empty string or an empty sequence.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindString:
		return v.Str == ""
	case KindStrings:
		return len(v.Strs) == 0
	default:
		return false
	}
}

// Clone returns a copy that shares no backing storage with v.
func (v Value) Clone() Value {
	if v.Kind == KindStrings {
		return StringsValue(v.Strs...)
	}
	return v
}

// Equal compares two values by kind and content.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == other.Bool
	case KindNumber:
		return v.Num == other.Num
	case KindStrings:
		return slices.Equal(v.Strs, other.Strs)
	default:
		return v.Str == other.Str
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindStrings:
		return strings.Join(v.Strs, ", ")
	default:
		return v.Str
	}
}

// MarshalJSON encodes the populated member of the union.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.MarshalWithOption(v.Bool, json.DisableHTMLEscape())
	case KindNumber:
		return json.MarshalWithOption(v.Num, json.DisableHTMLEscape())
	case KindStrings:
		if v.Strs == nil {
			return []byte("[]"), nil
		}
		return json.MarshalWithOption(v.Strs, json.DisableHTMLEscape())
	default:
		return json.MarshalWithOption(v.Str, json.DisableHTMLEscape())
	}
}

// UnmarshalJSON accepts a string, boolean, number or array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = StringValue("")
		return nil
	}
	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Bindings are call-time callbacks supplied by the rendering context. They
// are never serialised.
type Bindings struct {
	SetValue func(value any)
	OnChange func(value any)
	OnSelect func(value any)
}

// NoopBindings returns callbacks that ignore their argument. Hydrated fields
// carry these so they satisfy the same contract as freshly built ones.
func NoopBindings() Bindings {
	noop := func(any) {}
	return Bindings{SetValue: noop, OnChange: noop, OnSelect: noop}
}

// Attached reports whether every binding is present.
func (b Bindings) Attached() bool {
	return b.SetValue != nil && b.OnChange != nil && b.OnSelect != nil
}

// Defaults are the variant-specific display strings used when a field is
// created from the palette.
type Defaults struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// DefaultsLookup resolves the default display strings for a variant.
type DefaultsLookup func(variant string) (Defaults, bool)

// Field is one form field descriptor.
type Field struct {
	// Type is an optional HTML input type hint ("email", "number", ...).
	Type        string
	Variant     string
	Name        string
	Label       string
	Description string
	Placeholder string
	Value       Value
	Checked     bool
	Disabled    bool
	Required    bool
	Min         *float64
	Max         *float64
	Step        *float64
	Locale      string
	Hour12      *bool
	ClassName   string
	RowIndex    int
	// Extensions keeps unknown attributes as compact JSON keyed by name.
	Extensions map[string]json.RawMessage
	Bindings   Bindings
}

// Persisted returns a deep copy of the field without call-time bindings.
func (f Field) Persisted() Field {
	out := f.Clone()
	out.Bindings = Bindings{}
	return out
}

// Clone returns a deep copy of the field. Bindings are shared since they are
// immutable function values.
func (f Field) Clone() Field {
	out := f
	out.Value = f.Value.Clone()
	out.Min = cloneFloat(f.Min)
	out.Max = cloneFloat(f.Max)
	out.Step = cloneFloat(f.Step)
	if f.Hour12 != nil {
		h := *f.Hour12
		out.Hour12 = &h
	}
	out.Extensions = cloneExtensions(f.Extensions)
	return out
}

// Extension decodes an extension attribute into target.
func (f Field) Extension(key string, target any) (bool, error) {
	raw, ok := f.Extensions[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return true, fmt.Errorf("model: decode extension %q: %w", key, err)
	}
	return true, nil
}

// Float returns a pointer to n, for populating Min/Max/Step.
func Float(n float64) *float64 { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneExtensions(in map[string]json.RawMessage) map[string]json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for key, raw := range in {
		out[key] = slices.Clone(raw)
	}
	return out
}

// Entry is one element of a FieldList: a single field or a row group.
type Entry struct {
	Fields  []Field
	Grouped bool
}

// Single wraps one field as a top-level entry.
func Single(field Field) Entry {
	return Entry{Fields: []Field{field}}
}

// Group wraps fields as a row group.
func Group(fields ...Field) Entry {
	out := make([]Field, len(fields))
	copy(out, fields)
	return Entry{Fields: out, Grouped: true}
}

// IsGroup reports whether the entry is a row group.
func (e Entry) IsGroup() bool { return e.Grouped }

// Field returns the single field of a non-group entry.
func (e Entry) Field() (Field, bool) {
	if e.Grouped || len(e.Fields) != 1 {
		return Field{}, false
	}
	return e.Fields[0], true
}

// FieldList is the ordered, possibly grouped, list of fields owned by a
// builder session.
type FieldList []Entry
