package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Extension keys naming translation keys for a field's display strings.
const (
	LabelKeyExtension       = "labelKey"
	DescriptionKeyExtension = "descriptionKey"
	PlaceholderKeyExtension = "placeholderKey"
)

// Translation keys of the preview chrome.
const (
	SubmitKey = "preview.submit"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when a key is
// requested without a Translator configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return f(locale, key, args...)
}

// MissingTranslationHandler returns the text used when key cannot be
// translated. args carries a map with the "default" fallback text.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if m, ok := arg.(map[string]any); ok {
			if fallback, ok := m["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// LocalizeFieldList returns a copy of list with display strings translated
// through the "*Key" extensions of each field. Fields without keys are left
// as they are. The input list is never modified.
//
// This is best-effort: malformed keys are ignored and translation failures
// are routed through onMissing.
func LocalizeFieldList(list model.FieldList, locale string, t Translator, onMissing MissingTranslationHandler) model.FieldList {
	if len(list) == 0 {
		return list
	}
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	out := model.Clone(list)
	for i := range out {
		for j := range out[i].Fields {
			localizeField(&out[i].Fields[j], locale, t, onMissing)
		}
	}
	return out
}

func localizeField(field *model.Field, locale string, t Translator, onMissing MissingTranslationHandler) {
	if field == nil || len(field.Extensions) == 0 {
		return
	}

	if key := extensionString(*field, LabelKeyExtension); key != "" {
		field.Label = translate(locale, key, strings.TrimSpace(field.Label), t, onMissing)
	}
	if key := extensionString(*field, DescriptionKeyExtension); key != "" {
		field.Description = translate(locale, key, strings.TrimSpace(field.Description), t, onMissing)
	}
	if key := extensionString(*field, PlaceholderKeyExtension); key != "" {
		field.Placeholder = translate(locale, key, strings.TrimSpace(field.Placeholder), t, onMissing)
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func extensionString(field model.Field, key string) string {
	var value string
	if found, err := field.Extension(key, &value); !found || err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
