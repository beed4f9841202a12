package variants

import (
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// OptionsExtension is the extension key a field can use to override the
// sample options of its variant. It accepts an array of strings or of
// {"label", "value"} objects.
const OptionsExtension = "options"

// OptionsFor returns the choices offered by field: its own "options"
// extension when present and well-formed, otherwise the variant samples.
func (t *Table) OptionsFor(field model.Field) []Option {
	if custom, ok := extensionOptions(field); ok {
		return custom
	}
	return t.Resolve(field.Variant).Options
}

func extensionOptions(field model.Field) ([]Option, bool) {
	var objects []Option
	if found, err := field.Extension(OptionsExtension, &objects); found && err == nil && validOptions(objects) {
		return objects, true
	}
	var plain []string
	if found, err := field.Extension(OptionsExtension, &plain); found && err == nil && len(plain) > 0 {
		out := make([]Option, len(plain))
		for i, value := range plain {
			out[i] = Option{Label: value, Value: value}
		}
		return out, true
	}
	return nil, false
}

func validOptions(options []Option) bool {
	if len(options) == 0 {
		return false
	}
	for _, opt := range options {
		if opt.Value == "" {
			return false
		}
	}
	return true
}
