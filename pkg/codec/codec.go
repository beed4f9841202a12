// Package codec converts field lists to and from the persisted JSON export
// format: a top-level array whose elements are field objects or arrays of
// field objects (row groups). Hydration validates untrusted input element by
// element and stops at the first structural violation.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Persisted attribute keys, in the order Serialize writes them.
const (
	KeyType        = "type"
	KeyVariant     = "variant"
	KeyName        = "name"
	KeyLabel       = "label"
	KeyPlaceholder = "placeholder"
	KeyDescription = "description"
	KeyDisabled    = "disabled"
	KeyValue       = "value"
	KeyChecked     = "checked"
	KeyRowIndex    = "rowIndex"
	KeyRequired    = "required"
	KeyMin         = "min"
	KeyMax         = "max"
	KeyStep        = "step"
	KeyLocale      = "locale"
	KeyHour12      = "hour12"
	KeyClassName   = "className"
)

var errTrailingData = errors.New("unexpected data after top-level value")

var knownKeys = map[string]struct{}{
	KeyType: {}, KeyVariant: {}, KeyName: {}, KeyLabel: {}, KeyPlaceholder: {},
	KeyDescription: {}, KeyDisabled: {}, KeyValue: {}, KeyChecked: {},
	KeyRowIndex: {}, KeyRequired: {}, KeyMin: {}, KeyMax: {}, KeyStep: {},
	KeyLocale: {}, KeyHour12: {}, KeyClassName: {},
	// Call-time bindings never persist; they are dropped on input too.
	"setValue": {}, "onChange": {}, "onSelect": {},
}

// IsKnownKey reports whether key is a persisted attribute or a binding name.
func IsKnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}

// Serialize writes the persisted attributes of every field, preserving order
// and group nesting, as two-space indented JSON. Bindings are never written.
func Serialize(list model.FieldList) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, entry := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !entry.Grouped && len(entry.Fields) != 1 {
			return nil, fmt.Errorf("codec: entry %d is not grouped but holds %d fields", i, len(entry.Fields))
		}
		if entry.Grouped {
			buf.WriteByte('[')
		}
		for j, field := range entry.Fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeField(&buf, field); err != nil {
				return nil, fmt.Errorf("codec: encode field %q: %w", field.Name, err)
			}
		}
		if entry.Grouped {
			buf.WriteByte(']')
		}
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("codec: indent output: %w", err)
	}
	return out.Bytes(), nil
}

// SerializeString is Serialize returning a string.
func SerializeString(list model.FieldList) (string, error) {
	data, err := Serialize(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type objectWriter struct {
	buf   *bytes.Buffer
	count int
	err   error
}

// marshal encodes v without HTML escaping so labels such as "Email <work>"
// persist as typed.
func marshal(v any) ([]byte, error) {
	return json.MarshalWithOption(v, json.DisableHTMLEscape())
}

func (w *objectWriter) put(key string, value any) {
	if w.err != nil {
		return
	}
	encoded, err := marshal(value)
	if err != nil {
		w.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	w.raw(key, encoded)
}

func (w *objectWriter) raw(key string, encoded []byte) {
	if w.err != nil {
		return
	}
	if w.count > 0 {
		w.buf.WriteByte(',')
	}
	name, _ := marshal(key)
	w.buf.Write(name)
	w.buf.WriteByte(':')
	w.buf.Write(encoded)
	w.count++
}

func writeField(buf *bytes.Buffer, field model.Field) error {
	for _, n := range []*float64{field.Min, field.Max, field.Step} {
		if n != nil && (math.IsNaN(*n) || math.IsInf(*n, 0)) {
			return fmt.Errorf("non-finite numeric constraint")
		}
	}
	if field.Value.Kind == model.KindNumber && (math.IsNaN(field.Value.Num) || math.IsInf(field.Value.Num, 0)) {
		return fmt.Errorf("non-finite value")
	}

	w := &objectWriter{buf: buf}
	buf.WriteByte('{')
	if field.Type != "" {
		w.put(KeyType, field.Type)
	}
	w.put(KeyVariant, field.Variant)
	w.put(KeyName, field.Name)
	w.put(KeyLabel, field.Label)
	if field.Placeholder != "" {
		w.put(KeyPlaceholder, field.Placeholder)
	}
	if field.Description != "" {
		w.put(KeyDescription, field.Description)
	}
	w.put(KeyDisabled, field.Disabled)
	w.put(KeyValue, valueForJSON(field.Value))
	w.put(KeyChecked, field.Checked)
	w.put(KeyRowIndex, field.RowIndex)
	if field.Required {
		w.put(KeyRequired, true)
	}
	if field.Min != nil {
		w.put(KeyMin, *field.Min)
	}
	if field.Max != nil {
		w.put(KeyMax, *field.Max)
	}
	if field.Step != nil {
		w.put(KeyStep, *field.Step)
	}
	if field.Locale != "" {
		w.put(KeyLocale, field.Locale)
	}
	if field.Hour12 != nil {
		w.put(KeyHour12, *field.Hour12)
	}
	if field.ClassName != "" {
		w.put(KeyClassName, field.ClassName)
	}

	keys := make([]string, 0, len(field.Extensions))
	for key := range field.Extensions {
		if IsKnownKey(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var compact bytes.Buffer
		if err := json.Compact(&compact, field.Extensions[key]); err != nil {
			return fmt.Errorf("extension %q: %w", key, err)
		}
		w.raw(key, compact.Bytes())
	}
	buf.WriteByte('}')
	return w.err
}

func valueForJSON(v model.Value) any {
	if v.Kind == model.KindStrings && v.Strs == nil {
		return []string{}
	}
	return v.Interface()
}

// Hydrate parses and validates form JSON. Syntax failures return a
// *ParseError; structural failures return a *ShapeError naming the first
// offending path. No partial list is returned on failure.
func Hydrate(data []byte) (model.FieldList, error) {
	var syntax any
	if err := json.Unmarshal(data, &syntax); err != nil {
		return nil, newParseError(err)
	}
	if !json.Valid(data) {
		return nil, &ParseError{Offset: -1, Err: errTrailingData}
	}
	root := bytes.TrimSpace(data)
	if kindOf(root) != "array" {
		return nil, &ShapeError{Code: CodeInvalidType, Expected: "expected an array of fields or field groups", Got: kindOf(root)}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(root, &elements); err != nil {
		return nil, newParseError(err)
	}

	h := hydrator{seen: make(map[string]string)}
	list := make(model.FieldList, 0, len(elements))
	for i, element := range elements {
		path := strconv.Itoa(i)
		switch kindOf(element) {
		case "object":
			field, err := h.field(element, path, i)
			if err != nil {
				return nil, err
			}
			list = append(list, model.Single(field))
		case "array":
			var members []json.RawMessage
			if err := json.Unmarshal(element, &members); err != nil {
				return nil, newParseError(err)
			}
			fields := make([]model.Field, 0, len(members))
			for j, member := range members {
				memberPath := path + "." + strconv.Itoa(j)
				if kindOf(member) != "object" {
					return nil, &ShapeError{Path: memberPath, Code: CodeInvalidType, Expected: "expected a field object", Got: kindOf(member)}
				}
				field, err := h.field(member, memberPath, i)
				if err != nil {
					return nil, err
				}
				fields = append(fields, field)
			}
			list = append(list, model.Entry{Fields: fields, Grouped: true})
		default:
			return nil, &ShapeError{Path: path, Code: CodeInvalidType, Expected: "expected a field object or an array of field objects", Got: kindOf(element)}
		}
	}
	return list, nil
}

// HydrateString is Hydrate for string input.
func HydrateString(text string) (model.FieldList, error) {
	return Hydrate([]byte(text))
}

// HydrateReader reads r fully and hydrates it.
func HydrateReader(r io.Reader) (model.FieldList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read input: %w", err)
	}
	return Hydrate(data)
}

type hydrator struct {
	// seen maps field names to the path that declared them first.
	seen map[string]string
}

func (h *hydrator) field(raw json.RawMessage, path string, rowIndex int) (model.Field, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return model.Field{}, newParseError(err)
	}

	field := model.Field{
		Value:    model.StringValue(""),
		Checked:  true,
		RowIndex: rowIndex,
		Bindings: model.NoopBindings(),
	}

	var err error
	if field.Variant, err = requiredString(obj, KeyVariant, path); err != nil {
		return model.Field{}, err
	}
	if field.Name, err = requiredString(obj, KeyName, path); err != nil {
		return model.Field{}, err
	}
	if !model.ValidName(field.Name) {
		return model.Field{}, &ShapeError{Path: path + "." + KeyName, Code: CodeInvalidType, Expected: "expected a JavaScript identifier", Got: fmt.Sprintf("%q", field.Name)}
	}

	for _, spec := range []struct {
		key string
		dst *string
	}{
		{KeyType, &field.Type},
		{KeyLabel, &field.Label},
		{KeyPlaceholder, &field.Placeholder},
		{KeyDescription, &field.Description},
		{KeyLocale, &field.Locale},
		{KeyClassName, &field.ClassName},
	} {
		if err := optionalString(obj, spec.key, path, spec.dst); err != nil {
			return model.Field{}, err
		}
	}

	for _, spec := range []struct {
		key string
		dst *bool
	}{
		{KeyDisabled, &field.Disabled},
		{KeyChecked, &field.Checked},
		{KeyRequired, &field.Required},
	} {
		if _, err := optionalBool(obj, spec.key, path, spec.dst); err != nil {
			return model.Field{}, err
		}
	}

	var hour12 bool
	if set, err := optionalBool(obj, KeyHour12, path, &hour12); err != nil {
		return model.Field{}, err
	} else if set {
		field.Hour12 = model.Bool(hour12)
	}

	for _, spec := range []struct {
		key string
		dst **float64
	}{
		{KeyMin, &field.Min},
		{KeyMax, &field.Max},
		{KeyStep, &field.Step},
	} {
		var n float64
		set, err := optionalNumber(obj, spec.key, path, &n)
		if err != nil {
			return model.Field{}, err
		}
		if set {
			*spec.dst = model.Float(n)
		}
	}

	var row float64
	if set, err := optionalNumber(obj, KeyRowIndex, path, &row); err != nil {
		return model.Field{}, err
	} else if set {
		if row != math.Trunc(row) {
			return model.Field{}, &ShapeError{Path: path + "." + KeyRowIndex, Code: CodeInvalidType, Expected: "expected an integer", Got: "number"}
		}
		field.RowIndex = int(row)
	}

	if rawValue, ok := obj[KeyValue]; ok && kindOf(rawValue) != "null" {
		value, err := decodeValue(rawValue)
		if err != nil {
			return model.Field{}, &ShapeError{
				Path:     path + "." + KeyValue,
				Code:     CodeInvalidType,
				Expected: "expected a string, boolean, number or array of strings",
				Got:      kindOf(rawValue),
			}
		}
		field.Value = value
	}

	for key, rawExt := range obj {
		if IsKnownKey(key) {
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, rawExt); err != nil {
			return model.Field{}, newParseError(err)
		}
		if field.Extensions == nil {
			field.Extensions = make(map[string]json.RawMessage)
		}
		field.Extensions[key] = json.RawMessage(compact.Bytes())
	}

	if first, dup := h.seen[field.Name]; dup {
		return model.Field{}, &ShapeError{
			Path:     path + "." + KeyName,
			Code:     CodeDuplicateKey,
			Expected: fmt.Sprintf("field names must be unique; %q is already declared at %s", field.Name, first),
		}
	}
	h.seen[field.Name] = path
	return field, nil
}

func requiredString(obj map[string]json.RawMessage, key, path string) (string, error) {
	raw, ok := obj[key]
	if !ok || kindOf(raw) == "null" {
		return "", &ShapeError{Path: path + "." + key, Code: CodeRequired, Expected: fmt.Sprintf("%q is required (non-empty string)", key)}
	}
	if kindOf(raw) != "string" {
		return "", &ShapeError{Path: path + "." + key, Code: CodeInvalidType, Expected: "expected string", Got: kindOf(raw)}
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", newParseError(err)
	}
	if out == "" {
		return "", &ShapeError{Path: path + "." + key, Code: CodeRequired, Expected: fmt.Sprintf("%q is required (non-empty string)", key)}
	}
	return out, nil
}

func optionalString(obj map[string]json.RawMessage, key, path string, dst *string) error {
	raw, ok := obj[key]
	if !ok || kindOf(raw) == "null" {
		return nil
	}
	if kindOf(raw) != "string" {
		return &ShapeError{Path: path + "." + key, Code: CodeInvalidType, Expected: "expected string", Got: kindOf(raw)}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return newParseError(err)
	}
	return nil
}

func optionalBool(obj map[string]json.RawMessage, key, path string, dst *bool) (bool, error) {
	raw, ok := obj[key]
	if !ok || kindOf(raw) == "null" {
		return false, nil
	}
	if kindOf(raw) != "boolean" {
		return false, &ShapeError{Path: path + "." + key, Code: CodeInvalidType, Expected: "expected boolean", Got: kindOf(raw)}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, newParseError(err)
	}
	return true, nil
}

func optionalNumber(obj map[string]json.RawMessage, key, path string, dst *float64) (bool, error) {
	raw, ok := obj[key]
	if !ok || kindOf(raw) == "null" {
		return false, nil
	}
	if kindOf(raw) != "number" {
		return false, &ShapeError{Path: path + "." + key, Code: CodeInvalidType, Expected: "expected number", Got: kindOf(raw)}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, newParseError(err)
	}
	return true, nil
}

func decodeValue(raw json.RawMessage) (model.Value, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return model.Value{}, err
	}
	return model.ValueOf(decoded)
}

func kindOf(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func newParseError(err error) *ParseError {
	offset := int64(-1)
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		offset = syntaxErr.Offset
	}
	return &ParseError{Offset: offset, Err: err}
}
