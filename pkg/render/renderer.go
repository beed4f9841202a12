// Package render is the live preview dispatcher. It maps each field variant
// to a ControlRenderer that produces the HTML of one form item, lays entries
// out on a twelve column grid and returns the sanitized preview document.
// Variants without a renderer produce an Unsupported marker instead of an
// error, so one unknown field never blanks the whole preview.
package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Node is an HTML fragment produced by a control renderer.
type Node string

// String returns the fragment markup.
func (n Node) String() string { return string(n) }

// ControlRenderer renders one field as a complete form item: label, control,
// description and error messages.
type ControlRenderer func(field model.Field, binding Binding) (Node, error)

// Binding is the live state a control renders from. Value is the current
// form value, not the static value attribute of the descriptor. Callbacks
// are carried for interactive hosts and are never invoked while rendering.
type Binding struct {
	Value    any
	Errors   []string
	OnChange func(value any)
	OnSelect func(value any)
	SetValue func(value any)
}

// BindingFor builds a Binding from the field's call-time callbacks.
func BindingFor(field model.Field, value any, errs []string) Binding {
	return Binding{
		Value:    value,
		Errors:   normalizeMessages(errs),
		OnChange: field.Bindings.OnChange,
		OnSelect: field.Bindings.OnSelect,
		SetValue: field.Bindings.SetValue,
	}
}

// Invalid reports whether the binding carries error messages.
func (b Binding) Invalid() bool { return len(b.Errors) > 0 }

// Result is the outcome of dispatching one field.
type Result struct {
	HTML        string
	Unsupported bool
	// Err is set when the renderer failed; HTML then holds the unsupported
	// marker.
	Err error
}

// Unsupported marker text.
const (
	UnsupportedTitle  = "Unsupported field type: %q"
	UnsupportedDetail = "This component type is not available in the preview."
)

// RenderControl dispatches field to its renderer. A missing renderer yields
// the unsupported marker with Unsupported set. A failing or panicking
// renderer degrades to the same marker and reports the cause in Err.
func RenderControl(reg *Registry, field model.Field, binding Binding) Result {
	if reg == nil {
		reg = DefaultRegistry()
	}
	renderer, ok := reg.Lookup(field.Variant)
	if !ok {
		return Result{HTML: unsupported(field.Variant), Unsupported: true}
	}

	node, err := safeRender(renderer, field, binding)
	if err != nil {
		return Result{
			HTML:        unsupported(field.Variant),
			Unsupported: true,
			Err:         fmt.Errorf("render: field %q: %w", field.Name, err),
		}
	}
	return Result{HTML: node.String()}
}

func safeRender(renderer ControlRenderer, field model.Field, binding Binding) (node Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = "", fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return renderer(field, binding)
}

func unsupported(variant string) string {
	var b strings.Builder
	b.WriteString(`<div class="fb-unsupported" role="note" data-unsupported="`)
	b.WriteString(text(variant))
	b.WriteString(`">`)
	b.WriteString(`<p class="fb-unsupported-title">`)
	b.WriteString(text(fmt.Sprintf(UnsupportedTitle, variant)))
	b.WriteString(`</p><p class="fb-unsupported-detail">`)
	b.WriteString(UnsupportedDetail)
	b.WriteString(`</p></div>`)
	return b.String()
}
