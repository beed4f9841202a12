package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// DefaultSubmitLabel is the text of the preview submit button.
const DefaultSubmitLabel = "Submit"

// StylesheetAsset is the theme asset key linked from the preview document.
const StylesheetAsset = "preview.stylesheet"

// PreviewOptions describe per-request data the preview uses without
// mutating the field list.
type PreviewOptions struct {
	// Values are the live form values keyed by field name. Fields without
	// an entry show their derived default.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field name or JSON
	// pointer. Unknown keys become form-level messages.
	Errors map[string][]string
	// Issues are validation issues from schema.Validate, merged with Errors.
	Issues []schema.Issue
	// Hidden inputs emitted inside the form.
	Hidden []HiddenField
	// SubmitLabel overrides DefaultSubmitLabel.
	SubmitLabel string

	// Registry overrides the built-in control renderers.
	Registry *Registry
	// Table derives defaults and options; variants.Default() when nil.
	Table *variants.Table

	// Theme is the resolved go-theme configuration. When nil and
	// ThemeSelector is set, the selector resolves ThemeName and
	// ThemeVariant.
	Theme         *theme.RendererConfig
	ThemeSelector theme.ThemeSelector
	ThemeName     string
	ThemeVariant  string

	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

func (o PreviewOptions) table() *variants.Table {
	if o.Table != nil {
		return o.Table
	}
	return variants.Default()
}

func (o PreviewOptions) registry() *Registry {
	if o.Registry != nil {
		return o.Registry
	}
	if o.Table != nil {
		return NewRegistryFor(o.Table)
	}
	return DefaultRegistry()
}
