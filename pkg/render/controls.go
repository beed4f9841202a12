package render

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

var defaultRegistry = sync.OnceValue(NewDefaultRegistry)

// DefaultRegistry returns the shared registry of built-in controls. Callers
// that add renderers should work on DefaultRegistry().Clone().
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// NewDefaultRegistry returns a registry holding a renderer for every
// built-in variant, reading options and bounds from the default table.
func NewDefaultRegistry() *Registry {
	return NewRegistryFor(variants.Default())
}

// NewRegistryFor returns the built-in controls bound to table.
func NewRegistryFor(table *variants.Table) *Registry {
	if table == nil {
		table = variants.Default()
	}
	k := kit{table: table}
	reg := NewRegistry()
	reg.MustRegister(variants.Checkbox, k.checkbox)
	reg.MustRegister(variants.Combobox, k.combobox)
	reg.MustRegister(variants.DatePicker, k.datePicker)
	reg.MustRegister(variants.DatetimePicker, k.datetimePicker)
	reg.MustRegister(variants.FileInput, k.fileInput)
	reg.MustRegister(variants.Input, k.input)
	reg.MustRegister(variants.InputOTP, k.inputOTP)
	reg.MustRegister(variants.LocationInput, k.locationInput)
	reg.MustRegister(variants.MultiSelect, k.multiSelect)
	reg.MustRegister(variants.Password, k.password)
	reg.MustRegister(variants.Phone, k.phone)
	reg.MustRegister(variants.Select, k.selectControl)
	reg.MustRegister(variants.SignatureInput, k.signature)
	reg.MustRegister(variants.SignaturePad, k.signature)
	reg.MustRegister(variants.Slider, k.slider)
	reg.MustRegister(variants.SmartDatetimeInput, k.smartDatetime)
	reg.MustRegister(variants.Switch, k.switchControl)
	reg.MustRegister(variants.TagsInput, k.tagsInput)
	reg.MustRegister(variants.Textarea, k.textarea)
	reg.MustRegister(variants.Rating, k.rating)
	reg.MustRegister(variants.RadioGroup, k.radioGroup)
	reg.MustRegister(variants.CreditCard, k.creditCard)
	return reg
}

type kit struct {
	table *variants.Table
}

func (k kit) checkbox(field model.Field, binding Binding) (Node, error) {
	control := open("input", append(common(field, binding),
		a("type", "checkbox"),
		a("class", "fb-checkbox"),
		flag("checked", boolValue(current(field, binding))),
	)...)
	return inlineItem(field, binding, control), nil
}

func (k kit) switchControl(field model.Field, binding Binding) (Node, error) {
	on := boolValue(current(field, binding))
	control := open("input", append(common(field, binding),
		a("type", "checkbox"),
		a("role", "switch"),
		a("class", "fb-switch"),
		a("aria-checked", strconv.FormatBool(on)),
		flag("checked", on),
	)...)
	return inlineItem(field, binding, control), nil
}

func (k kit) input(field model.Field, binding Binding) (Node, error) {
	kind := strings.ToLower(strings.TrimSpace(field.Type))
	if kind == "" {
		kind = "text"
	}
	attrs := append(common(field, binding),
		a("type", kind),
		a("class", "fb-input"),
		a("placeholder", field.Placeholder),
		a("value", stringValue(current(field, binding))),
	)
	if k.table.Constraint(field).Kind == variants.KindNumber {
		attrs = append(attrs, k.bounds(field)...)
	}
	return item(field, binding, open("input", attrs...)), nil
}

func (k kit) password(field model.Field, binding Binding) (Node, error) {
	control := open("input", append(common(field, binding),
		a("type", "password"),
		a("class", "fb-input"),
		a("autocomplete", "current-password"),
		a("placeholder", field.Placeholder),
		a("value", stringValue(current(field, binding))),
	)...)
	return item(field, binding, control), nil
}

func (k kit) phone(field model.Field, binding Binding) (Node, error) {
	control := open("input", append(common(field, binding),
		a("type", "tel"),
		a("class", "fb-input fb-phone"),
		a("inputmode", "tel"),
		a("autocomplete", "tel"),
		a("placeholder", placeholderOr(field, "+1 555 000 0000")),
		a("value", stringValue(current(field, binding))),
	)...)
	return item(field, binding, control), nil
}

func (k kit) textarea(field model.Field, binding Binding) (Node, error) {
	control := el("textarea", append(common(field, binding),
		a("class", "fb-textarea"),
		a("rows", "4"),
		a("placeholder", field.Placeholder),
	), text(stringValue(current(field, binding))))
	return item(field, binding, control), nil
}

func (k kit) selectControl(field model.Field, binding Binding) (Node, error) {
	selected := stringValue(current(field, binding))
	options := []string{el("option", []attr{a("value", ""), flag("disabled", true), flag("selected", selected == "")},
		text(placeholderOr(field, "Select an option")))}
	for _, opt := range k.table.OptionsFor(field) {
		options = append(options, el("option",
			[]attr{a("value", opt.Value), flag("selected", opt.Value == selected)}, text(opt.Label)))
	}
	control := el("select", append(common(field, binding), a("class", "fb-select")), options...)
	return item(field, binding, control), nil
}

func (k kit) combobox(field model.Field, binding Binding) (Node, error) {
	selected := stringValue(current(field, binding))
	options := k.table.OptionsFor(field)
	label := placeholderOr(field, "Select "+strings.ToLower(field.Label))
	items := make([]string, 0, len(options))
	for _, opt := range options {
		if opt.Value == selected {
			label = opt.Label
		}
		items = append(items, el("li", []attr{
			a("role", "option"),
			a("class", "fb-combobox-option"),
			a("data-value", opt.Value),
			a("aria-selected", strconv.FormatBool(opt.Value == selected)),
		}, text(opt.Label)))
	}
	control := el("div", []attr{a("class", "fb-combobox")},
		el("button", append(common(field, binding),
			a("type", "button"),
			a("role", "combobox"),
			a("class", "fb-combobox-trigger"),
			a("aria-expanded", "false"),
			a("value", selected),
		), text(label)),
		el("ul", []attr{a("role", "listbox"), a("class", "fb-combobox-list")}, items...),
	)
	return item(field, binding, control), nil
}

func (k kit) multiSelect(field model.Field, binding Binding) (Node, error) {
	selected := setOf(stringsValue(current(field, binding)))
	options := make([]string, 0)
	for _, opt := range k.table.OptionsFor(field) {
		_, on := selected[opt.Value]
		options = append(options, el("option",
			[]attr{a("value", opt.Value), flag("selected", on)}, text(opt.Label)))
	}
	control := el("select", append(common(field, binding),
		a("class", "fb-select fb-multi-select"),
		flag("multiple", true),
	), options...)
	return item(field, binding, control), nil
}

func (k kit) radioGroup(field model.Field, binding Binding) (Node, error) {
	selected := stringValue(current(field, binding))
	var rows []string
	for i, opt := range k.table.OptionsFor(field) {
		id := fieldID(field) + "-" + strconv.Itoa(i)
		rows = append(rows, el("div", []attr{a("class", "fb-radio-item")},
			open("input",
				a("type", "radio"),
				a("id", id),
				a("name", field.Name),
				a("value", opt.Value),
				a("class", "fb-radio"),
				flag("checked", opt.Value == selected),
				flag("disabled", field.Disabled),
			),
			el("label", []attr{a("for", id), a("class", "fb-radio-label")}, text(opt.Label)),
		))
	}
	control := el("div", []attr{
		a("role", "radiogroup"),
		a("class", "fb-radio-group"),
		a("aria-describedby", describedBy(field, binding)),
	}, rows...)
	return item(field, binding, control), nil
}

func (k kit) datePicker(field model.Field, binding Binding) (Node, error) {
	control := open("input", append(common(field, binding),
		a("type", "date"),
		a("class", "fb-input fb-date"),
		a("value", dateValue(current(field, binding), "2006-01-02")),
	)...)
	return item(field, binding, control), nil
}

func (k kit) datetimePicker(field model.Field, binding Binding) (Node, error) {
	attrs := append(common(field, binding),
		a("type", "datetime-local"),
		a("class", "fb-input fb-datetime"),
		a("value", dateValue(current(field, binding), "2006-01-02T15:04")),
	)
	attrs = append(attrs, localeAttrs(field)...)
	return item(field, binding, open("input", attrs...)), nil
}

func (k kit) smartDatetime(field model.Field, binding Binding) (Node, error) {
	attrs := append(common(field, binding),
		a("type", "text"),
		a("class", "fb-input fb-smart-datetime"),
		a("placeholder", placeholderOr(field, `e.g. "tomorrow at 5pm" or "in 2 hours"`)),
		a("value", stringValue(current(field, binding))),
	)
	attrs = append(attrs, localeAttrs(field)...)
	return item(field, binding, open("input", attrs...)), nil
}

func (k kit) fileInput(field model.Field, binding Binding) (Node, error) {
	files := stringsValue(current(field, binding))
	children := []string{
		open("input", append(common(field, binding),
			a("type", "file"),
			a("class", "fb-file"),
			flag("multiple", true),
		)...),
		el("p", []attr{a("class", "fb-dropzone-hint")},
			el("strong", nil, "Click to upload"), " or drag and drop"),
		el("p", []attr{a("class", "fb-dropzone-hint")}, "SVG, PNG, JPG or GIF"),
	}
	if len(files) > 0 {
		list := make([]string, len(files))
		for i, name := range files {
			list[i] = el("li", []attr{a("class", "fb-file-item")}, text(name))
		}
		children = append(children, el("ul", []attr{a("class", "fb-file-list")}, list...))
	}
	return item(field, binding, el("div", []attr{a("class", "fb-dropzone")}, children...)), nil
}

func (k kit) inputOTP(field model.Field, binding Binding) (Node, error) {
	length := k.table.Constraint(field).Length
	if length <= 0 {
		length = 6
	}
	chars := []rune(stringValue(current(field, binding)))
	half := (length + 1) / 2
	var slots []string
	for i := 0; i < length; i++ {
		if i == half {
			slots = append(slots, el("div", []attr{a("role", "separator"), a("class", "fb-otp-separator")}, "-"))
		}
		value := ""
		if i < len(chars) {
			value = string(chars[i])
		}
		slots = append(slots, open("input",
			a("type", "text"),
			a("class", "fb-otp-slot"),
			a("inputmode", "numeric"),
			a("maxlength", "1"),
			a("aria-label", "Digit "+strconv.Itoa(i+1)),
			a("value", value),
			flag("disabled", field.Disabled),
		))
	}
	group := el("div", []attr{
		a("id", fieldID(field)),
		a("class", "fb-otp"),
		a("data-length", strconv.Itoa(length)),
		a("aria-describedby", describedBy(field, binding)),
	}, slots...)
	hidden := open("input", a("type", "hidden"), a("name", field.Name), a("value", string(chars)))
	return item(field, binding, group+hidden), nil
}

func (k kit) locationInput(field model.Field, binding Binding) (Node, error) {
	parts := stringsValue(current(field, binding))
	country, state := "", ""
	if len(parts) > 0 {
		country = parts[0]
	}
	if len(parts) > 1 {
		state = parts[1]
	}

	countryOptions := []string{el("option", []attr{a("value", ""), flag("selected", country == "")}, "Select country")}
	var states []string
	for _, c := range sampleCountries {
		countryOptions = append(countryOptions, el("option",
			[]attr{a("value", c.name), flag("selected", c.name == country)}, text(c.name)))
		if c.name == country {
			states = c.states
		}
	}
	children := []string{el("select", append(common(field, binding),
		a("class", "fb-select fb-location-country"),
		a("data-part", "country"),
	), countryOptions...)}

	if len(states) > 0 {
		stateOptions := []string{el("option", []attr{a("value", ""), flag("selected", state == "")}, "Select state")}
		for _, s := range states {
			stateOptions = append(stateOptions, el("option",
				[]attr{a("value", s), flag("selected", s == state)}, text(s)))
		}
		children = append(children, el("select", []attr{
			a("name", field.Name+".state"),
			a("class", "fb-select fb-location-state"),
			a("data-part", "state"),
			flag("disabled", field.Disabled),
		}, stateOptions...))
	}
	return item(field, binding, el("div", []attr{a("class", "fb-location")}, children...)), nil
}

func (k kit) signature(field model.Field, binding Binding) (Node, error) {
	value := stringValue(current(field, binding))
	control := el("div", []attr{a("class", "fb-signature"), a("data-signed", strconv.FormatBool(value != ""))},
		el("canvas", []attr{
			a("id", fieldID(field)),
			a("class", "fb-signature-canvas"),
			a("width", "400"),
			a("height", "160"),
			a("aria-describedby", describedBy(field, binding)),
		}),
		el("button", []attr{a("type", "button"), a("class", "fb-button fb-button-ghost"), flag("disabled", field.Disabled)}, "Clear"),
		open("input", a("type", "hidden"), a("name", field.Name), a("value", value)),
	)
	return item(field, binding, control), nil
}

func (k kit) slider(field model.Field, binding Binding) (Node, error) {
	minimum, _, _ := k.limits(field)
	value, ok := numberValue(current(field, binding))
	if !ok {
		value = minimum
	}
	control := el("div", []attr{a("class", "fb-slider")},
		open("input", append(append(common(field, binding),
			a("type", "range"),
			a("class", "fb-range"),
			a("value", formatNumber(value)),
		), k.bounds(field)...)...),
		el("span", []attr{a("class", "fb-slider-value")}, formatNumber(value)),
	)
	return item(field, binding, control), nil
}

func (k kit) rating(field model.Field, binding Binding) (Node, error) {
	_, maximum, _ := k.limits(field)
	stars := int(maximum)
	if stars <= 0 || stars > 10 {
		stars = 5
	}
	value, _ := numberValue(current(field, binding))
	var buttons []string
	for i := 1; i <= stars; i++ {
		filled := float64(i) <= value
		buttons = append(buttons, el("button", []attr{
			a("type", "button"),
			a("role", "radio"),
			a("class", "fb-star"),
			a("data-value", strconv.Itoa(i)),
			a("data-filled", strconv.FormatBool(filled)),
			a("aria-checked", strconv.FormatBool(value == float64(i))),
			a("aria-label", strconv.Itoa(i)+" of "+strconv.Itoa(stars)),
			flag("disabled", field.Disabled),
		}, "&#9733;"))
	}
	control := el("div", []attr{
		a("id", fieldID(field)),
		a("role", "radiogroup"),
		a("class", "fb-rating"),
		a("aria-describedby", describedBy(field, binding)),
	}, buttons...)
	hidden := open("input", a("type", "hidden"), a("name", field.Name), a("value", formatNumber(value)))
	return item(field, binding, control+hidden), nil
}

func (k kit) tagsInput(field model.Field, binding Binding) (Node, error) {
	tags := stringsValue(current(field, binding))
	children := make([]string, 0, len(tags)*2+1)
	for _, tag := range tags {
		children = append(children,
			el("span", []attr{a("class", "fb-tag")}, text(tag)),
			open("input", a("type", "hidden"), a("name", field.Name), a("value", tag)),
		)
	}
	children = append(children, open("input",
		a("type", "text"),
		a("id", fieldID(field)),
		a("class", "fb-tags-input"),
		a("placeholder", placeholderOr(field, "Enter a tag")),
		a("aria-describedby", describedBy(field, binding)),
		flag("disabled", field.Disabled),
	))
	return item(field, binding, el("div", []attr{a("class", "fb-tags")}, children...)), nil
}

func (k kit) creditCard(field model.Field, binding Binding) (Node, error) {
	control := el("div", []attr{a("class", "fb-credit-card")},
		open("input", append(common(field, binding),
			a("type", "text"),
			a("class", "fb-input fb-card-number"),
			a("inputmode", "numeric"),
			a("autocomplete", "cc-number"),
			a("placeholder", placeholderOr(field, "1234 5678 9012 3456")),
			a("value", stringValue(current(field, binding))),
		)...),
		el("div", []attr{a("class", "fb-card-row")},
			open("input", a("type", "text"), a("name", field.Name+".expiry"), a("class", "fb-input fb-card-expiry"),
				a("autocomplete", "cc-exp"), a("placeholder", "MM/YY"), flag("disabled", field.Disabled)),
			open("input", a("type", "text"), a("name", field.Name+".cvc"), a("class", "fb-input fb-card-cvc"),
				a("inputmode", "numeric"), a("autocomplete", "cc-csc"), a("placeholder", "CVC"), flag("disabled", field.Disabled)),
		),
	)
	return item(field, binding, control), nil
}

// limits resolves the numeric bounds of field, falling back to the variant
// defaults.
func (k kit) limits(field model.Field) (minimum, maximum, step float64) {
	c := k.table.Constraint(field)
	minimum, maximum, step = 0, 100, 1
	if c.DefaultMin != nil {
		minimum = *c.DefaultMin
	}
	if c.DefaultMax != nil {
		maximum = *c.DefaultMax
	}
	if field.Min != nil {
		minimum = *field.Min
	}
	if field.Max != nil {
		maximum = *field.Max
	}
	if field.Step != nil && *field.Step > 0 {
		step = *field.Step
	}
	return minimum, maximum, step
}

func (k kit) bounds(field model.Field) []attr {
	c := k.table.Constraint(field)
	var out []attr
	if v := firstSet(field.Min, c.DefaultMin); v != nil {
		out = append(out, a("min", formatNumber(*v)))
	}
	if v := firstSet(field.Max, c.DefaultMax); v != nil {
		out = append(out, a("max", formatNumber(*v)))
	}
	if field.Step != nil {
		out = append(out, a("step", formatNumber(*field.Step)))
	}
	return out
}

type country struct {
	name   string
	states []string
}

var sampleCountries = []country{
	{name: "United States", states: []string{"California", "New York", "Texas"}},
	{name: "Canada", states: []string{"Ontario", "Quebec", "British Columbia"}},
	{name: "Germany", states: []string{"Bavaria", "Berlin", "Hamburg"}},
	{name: "Japan"},
	{name: "Singapore"},
}

func fieldID(field model.Field) string {
	return "fb-" + field.Name
}

// common are the attributes shared by the primary element of a control.
func common(field model.Field, binding Binding) []attr {
	attrs := []attr{
		a("id", fieldID(field)),
		a("name", field.Name),
		flag("disabled", field.Disabled),
		flag("required", field.Required),
	}
	if binding.Invalid() {
		attrs = append(attrs, a("aria-invalid", "true"))
	}
	if by := describedBy(field, binding); by != "" {
		attrs = append(attrs, a("aria-describedby", by))
	}
	return attrs
}

func describedBy(field model.Field, binding Binding) string {
	var ids []string
	if field.Description != "" {
		ids = append(ids, fieldID(field)+"-description")
	}
	if binding.Invalid() {
		ids = append(ids, fieldID(field)+"-message")
	}
	return strings.Join(ids, " ")
}

func localeAttrs(field model.Field) []attr {
	var out []attr
	if field.Locale != "" {
		out = append(out, a("data-locale", field.Locale))
	}
	if field.Hour12 != nil {
		out = append(out, a("data-hour12", strconv.FormatBool(*field.Hour12)))
	}
	return out
}

// item wraps control with the label above and the description and messages
// below it.
func item(field model.Field, binding Binding, control string) Node {
	var b strings.Builder
	b.WriteString(open("div", itemAttrs(field, binding, "fb-item")...))
	b.WriteString(label(field))
	b.WriteString(control)
	b.WriteString(description(field))
	b.WriteString(messages(field, binding))
	b.WriteString("</div>")
	return Node(b.String())
}

// inlineItem places the control before its label, as checkboxes and
// switches read.
func inlineItem(field model.Field, binding Binding, control string) Node {
	var b strings.Builder
	b.WriteString(open("div", itemAttrs(field, binding, "fb-item fb-item-inline")...))
	b.WriteString(control)
	b.WriteString(`<div class="fb-item-text">`)
	b.WriteString(label(field))
	b.WriteString(description(field))
	b.WriteString("</div>")
	b.WriteString(messages(field, binding))
	b.WriteString("</div>")
	return Node(b.String())
}

func itemAttrs(field model.Field, binding Binding, class string) []attr {
	attrs := []attr{
		a("class", classes(class, field.ClassName)),
		a("data-variant", field.Variant),
		a("data-field", field.Name),
	}
	if binding.Invalid() {
		attrs = append(attrs, a("data-invalid", "true"))
	}
	return attrs
}

func label(field model.Field) string {
	if field.Label == "" {
		return ""
	}
	content := text(field.Label)
	if field.Required {
		content += `<span class="fb-required" aria-hidden="true">*</span>`
	}
	return el("label", []attr{a("for", fieldID(field)), a("class", "fb-label")}, content)
}

func description(field model.Field) string {
	if field.Description == "" {
		return ""
	}
	return el("p", []attr{a("id", fieldID(field)+"-description"), a("class", "fb-description")}, text(field.Description))
}

func messages(field model.Field, binding Binding) string {
	if !binding.Invalid() {
		return ""
	}
	lines := make([]string, len(binding.Errors))
	for i, msg := range binding.Errors {
		lines[i] = el("span", []attr{a("class", "fb-message-line")}, text(msg))
	}
	return el("p", []attr{a("id", fieldID(field)+"-message"), a("class", "fb-message"), a("role", "alert")}, lines...)
}

func placeholderOr(field model.Field, fallback string) string {
	if field.Placeholder != "" {
		return field.Placeholder
	}
	return fallback
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// current is the live value when the binding carries one, otherwise the
// descriptor's value.
func current(field model.Field, binding Binding) any {
	if binding.Value != nil {
		return binding.Value
	}
	return field.Value.Interface()
}

func stringValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return formatNumber(value)
	case int:
		return strconv.Itoa(value)
	case []string:
		return strings.Join(value, ", ")
	case model.Value:
		return value.String()
	default:
		return toString(value)
	}
}

func toString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	parsed, err := model.ValueOf(v)
	if err != nil {
		return ""
	}
	return parsed.String()
}

func boolValue(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "on", "1", "yes":
			return true
		}
	case float64:
		return value != 0
	}
	return false
}

func numberValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, !math.IsNaN(value)
	case int:
		return float64(value), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return n, err == nil
	}
	return 0, false
}

func stringsValue(v any) []string {
	switch value := v.(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if value == "" {
			return nil
		}
		return []string{value}
	}
	return nil
}

func setOf(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// dateValue reformats an accepted date string for an input of layout.
// Unparseable values pass through so the control still shows what was
// typed.
func dateValue(v any, layout string) string {
	raw := strings.TrimSpace(stringValue(v))
	if raw == "" {
		return ""
	}
	for _, candidate := range schema.DateLayouts {
		if t, err := time.Parse(candidate, raw); err == nil {
			return t.Format(layout)
		}
	}
	return raw
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
