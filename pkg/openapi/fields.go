package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// Extension keys read from property schemas. pkg/schema writes the same keys
// when it exports a form.
const (
	ExtVariant     = "x-variant"
	ExtOrder       = "x-order"
	ExtFormat      = "x-format"
	ExtPlaceholder = "x-placeholder"
	ExtStep        = "x-step"
)

// textareaThreshold is the maxLength above which a string becomes a Textarea.
const textareaThreshold = 255

var (
	// ErrInvalidDocument reports a payload that is not a readable OpenAPI
	// document.
	ErrInvalidDocument = errors.New("openapi: invalid document")
	// ErrSchemaNotFound reports a component name missing from the document.
	ErrSchemaNotFound = errors.New("openapi: schema not found")
	// ErrOperationNotFound reports an operationId missing from the document.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody reports an operation without a usable request body.
	ErrNoRequestBody = errors.New("openapi: operation has no request body schema")
	// ErrNotObject reports a selected schema that is not an object.
	ErrNotObject = errors.New("openapi: selected schema is not an object")
	// ErrAmbiguousSelection reports a document with several candidate schemas
	// and no selection.
	ErrAmbiguousSelection = errors.New("openapi: select a schema or an operation")
)

// Selection picks the object schema to import. Operation takes precedence
// over Schema; when both are empty the document must hold a single component
// schema or one named Form.
type Selection struct {
	Schema    string
	Operation string
}

// Skipped names a property that had no field equivalent.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the imported field list and the properties left out of it.
type Result struct {
	Fields  model.FieldList `json:"-"`
	Skipped []Skipped       `json:"skipped,omitempty"`
}

// Option configures Fields.
type Option func(*importer)

// WithVariantTable resolves x-variant hints against table instead of the
// built-in palette.
func WithVariantTable(table *variants.Table) Option {
	return func(im *importer) {
		if table != nil {
			im.table = table
		}
	}
}

type importer struct {
	table *variants.Table
}

// Fields parses doc and converts the selected object schema into a field
// list, one single entry per property.
func Fields(ctx context.Context, doc Document, sel Selection, opts ...Option) (Result, error) {
	im := &importer{table: variants.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(im)
		}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return Result{}, fmt.Errorf("%w %s: %w", ErrInvalidDocument, doc.Location(), err)
	}

	root, err := selectSchema(spec, sel)
	if err != nil {
		return Result{}, err
	}
	if !isObject(root) {
		return Result{}, ErrNotObject
	}
	return im.convert(root), nil
}

func selectSchema(spec *openapi3.T, sel Selection) (*openapi3.Schema, error) {
	if sel.Operation != "" {
		return operationSchema(spec, sel.Operation)
	}

	var schemas openapi3.Schemas
	if spec.Components != nil {
		schemas = spec.Components.Schemas
	}
	name := sel.Schema
	if name == "" {
		switch {
		case schemas["Form"] != nil:
			name = "Form"
		case len(schemas) == 1:
			for only := range schemas {
				name = only
			}
		default:
			return nil, fmt.Errorf("%w (available: %s)", ErrAmbiguousSelection, strings.Join(sortedKeys(schemas), ", "))
		}
	}
	ref := schemas[name]
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	}
	return ref.Value, nil
}

func operationSchema(spec *openapi3.T, operationID string) (*openapi3.Schema, error) {
	if spec.Paths == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil || op.OperationID != operationID {
				continue
			}
			if op.RequestBody == nil || op.RequestBody.Value == nil {
				return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
			}
			content := op.RequestBody.Value.Content
			if media := content.Get("application/json"); media != nil && media.Schema != nil && media.Schema.Value != nil {
				return media.Schema.Value, nil
			}
			for _, contentType := range sortedKeys(content) {
				media := content[contentType]
				if media != nil && media.Schema != nil && media.Schema.Value != nil {
					return media.Schema.Value, nil
				}
			}
			return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
}

type property struct {
	name   string
	schema *openapi3.Schema
	order  float64
	hasPos bool
}

func (im *importer) convert(root *openapi3.Schema) Result {
	props, required := collect(root)

	ordered := make([]property, 0, len(props))
	for name, schema := range props {
		p := property{name: name, schema: schema}
		p.order, p.hasPos = numberExtension(schema, ExtOrder)
		ordered = append(ordered, p)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.hasPos != b.hasPos {
			return a.hasPos
		}
		if a.hasPos && a.order != b.order {
			return a.order < b.order
		}
		return a.name < b.name
	})

	var res Result
	for _, p := range ordered {
		field, reason := im.field(p.name, p.schema, required[p.name])
		if reason != "" {
			res.Skipped = append(res.Skipped, Skipped{Name: p.name, Reason: reason})
			continue
		}
		field.RowIndex = len(res.Fields)
		res.Fields = append(res.Fields, model.Single(field))
	}
	return res
}

// collect merges the properties and required names of schema and its allOf
// members.
func collect(schema *openapi3.Schema) (map[string]*openapi3.Schema, map[string]bool) {
	props := make(map[string]*openapi3.Schema)
	required := make(map[string]bool)
	var walk func(*openapi3.Schema)
	walk = func(s *openapi3.Schema) {
		if s == nil {
			return
		}
		for _, part := range s.AllOf {
			if part != nil {
				walk(part.Value)
			}
		}
		for name, ref := range s.Properties {
			if ref != nil && ref.Value != nil {
				props[name] = ref.Value
			}
		}
		for _, name := range s.Required {
			required[name] = true
		}
	}
	walk(schema)
	return props, required
}

func (im *importer) field(name string, schema *openapi3.Schema, required bool) (model.Field, string) {
	if !model.ValidName(name) {
		return model.Field{}, "name is not a JavaScript identifier"
	}
	variant, inputType, reason := im.variantFor(schema)
	if reason != "" {
		return model.Field{}, reason
	}

	defaults, _ := im.table.Defaults(variant)
	field := model.Field{
		Type:        inputType,
		Variant:     im.table.Resolve(variant).Name,
		Name:        name,
		Label:       schema.Title,
		Description: schema.Description,
		Value:       model.StringValue(""),
		Checked:     true,
		Disabled:    schema.ReadOnly,
		Required:    required,
		Min:         copyFloat(schema.Min),
		Max:         copyFloat(schema.Max),
		Step:        copyFloat(schema.MultipleOf),
		Bindings:    model.NoopBindings(),
	}
	if field.Label == "" {
		field.Label = humanize(name)
	}
	if field.Description == "" {
		field.Description = defaults.Description
	}
	if placeholder, ok := stringExtension(schema, ExtPlaceholder); ok {
		field.Placeholder = placeholder
	} else if example, ok := schema.Example.(string); ok {
		field.Placeholder = example
	} else {
		field.Placeholder = defaults.Placeholder
	}
	if step, ok := numberExtension(schema, ExtStep); ok && field.Step == nil && step > 0 {
		field.Step = model.Float(step)
	}
	if field.Step == nil && hasType(schema, openapi3.TypeInteger) {
		field.Step = model.Float(1)
	}
	if schema.Default != nil {
		if value, err := model.ValueOf(schema.Default); err == nil {
			field.Value = value
		}
	}
	if options := enumOptions(schema); len(options) > 0 {
		raw, err := json.Marshal(options)
		if err == nil {
			field.Extensions = map[string]json.RawMessage{variants.OptionsExtension: raw}
		}
	}
	return field, ""
}

// variantFor picks the variant for a property schema. A non-empty reason
// means the property is skipped.
func (im *importer) variantFor(schema *openapi3.Schema) (variant, inputType, reason string) {
	format := schema.Format
	if f, ok := stringExtension(schema, ExtFormat); ok && format == "" {
		format = f
	}

	if hint, ok := stringExtension(schema, ExtVariant); ok && im.table.Has(hint) {
		variant = im.table.Resolve(hint).Name
		if variant == variants.Input {
			inputType = inputTypeFor(schema, format)
		}
		return variant, inputType, ""
	}

	switch {
	case hasType(schema, openapi3.TypeBoolean):
		if mustBeTrue(schema) {
			return variants.Checkbox, "", ""
		}
		return variants.Switch, "", ""

	case hasType(schema, openapi3.TypeInteger), hasType(schema, openapi3.TypeNumber):
		return variants.Input, "number", ""

	case hasType(schema, openapi3.TypeArray):
		items := itemSchema(schema)
		if items != nil && !hasType(items, openapi3.TypeString) && schemaType(items) != "" {
			return "", "", "arrays of " + schemaType(items) + " are not supported"
		}
		if items != nil && len(items.Enum) > 0 {
			return variants.MultiSelect, "", ""
		}
		return variants.TagsInput, "", ""

	case hasType(schema, openapi3.TypeString), schemaType(schema) == "" && len(schema.Properties) == 0:
		if len(schema.Enum) > 0 {
			return variants.Select, "", ""
		}
		switch format {
		case "date":
			return variants.DatePicker, "", ""
		case "date-time":
			return variants.DatetimePicker, "", ""
		case "password":
			return variants.Password, "", ""
		case "tel", "phone":
			return variants.Phone, "", ""
		case "email":
			return variants.Input, "email", ""
		}
		if schema.MaxLength != nil && *schema.MaxLength > textareaThreshold {
			return variants.Textarea, "", ""
		}
		return variants.Input, "", ""

	default:
		return "", "", "nested objects are not supported"
	}
}

func inputTypeFor(schema *openapi3.Schema, format string) string {
	switch {
	case hasType(schema, openapi3.TypeInteger), hasType(schema, openapi3.TypeNumber):
		return "number"
	case format == "email":
		return "email"
	}
	return ""
}

func mustBeTrue(schema *openapi3.Schema) bool {
	return len(schema.Enum) == 1 && schema.Enum[0] == true
}

func itemSchema(schema *openapi3.Schema) *openapi3.Schema {
	if schema.Items == nil {
		return nil
	}
	return schema.Items.Value
}

func enumOptions(schema *openapi3.Schema) []variants.Option {
	enum := schema.Enum
	if hasType(schema, openapi3.TypeArray) {
		if items := itemSchema(schema); items != nil {
			enum = items.Enum
		}
	} else if hasType(schema, openapi3.TypeBoolean) {
		return nil
	}
	out := make([]variants.Option, 0, len(enum))
	for _, v := range enum {
		if v == nil {
			continue
		}
		value := fmt.Sprint(v)
		out = append(out, variants.Option{Label: value, Value: value})
	}
	return out
}

// schemaType returns the first non-null declared type.
func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	for _, t := range schema.Type.Slice() {
		if t != "null" {
			return t
		}
	}
	return ""
}

func hasType(schema *openapi3.Schema, typ string) bool {
	return schemaType(schema) == typ
}

func isObject(schema *openapi3.Schema) bool {
	t := schemaType(schema)
	if t == openapi3.TypeObject {
		return true
	}
	if t != "" {
		return false
	}
	if len(schema.Properties) > 0 {
		return true
	}
	for _, part := range schema.AllOf {
		if part != nil && part.Value != nil && isObject(part.Value) {
			return true
		}
	}
	return false
}

func stringExtension(schema *openapi3.Schema, key string) (string, bool) {
	v, ok := schema.Extensions[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func numberExtension(schema *openapi3.Schema, key string) (float64, bool) {
	switch v := schema.Extensions[key].(type) {
	case float64:
		return v, !math.IsNaN(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	}
	return 0, false
}

func copyFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

// humanize turns "first_name" and "firstName" into "First name".
func humanize(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return name
	}
	runes := []rune(out)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
