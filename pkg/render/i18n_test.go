package render_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func keyed(field model.Field, keys map[string]string) model.Field {
	field.Extensions = make(map[string]json.RawMessage, len(keys))
	for ext, key := range keys {
		raw, _ := json.Marshal(key)
		field.Extensions[ext] = raw
	}
	return field
}

func TestLocalizeFieldList_UsesKeysAndFallbacks(t *testing.T) {
	list := model.FieldList{
		model.Single(keyed(model.Field{
			Variant:     "Input",
			Name:        "name_1",
			Label:       "Username",
			Description: "Public name",
			Placeholder: "shadcn",
		}, map[string]string{
			render.LabelKeyExtension:       "fields.username.label",
			render.DescriptionKeyExtension: "fields.username.description",
		})),
		model.Group(
			keyed(model.Field{Variant: "Input", Name: "name_2", Label: ""}, map[string]string{
				render.LabelKeyExtension: "fields.unknown",
			}),
			model.Field{Variant: "Input", Name: "name_3", Label: "Untouched"},
		),
	}

	out := render.LocalizeFieldList(list, "es", stubTranslator{"fields.username.label": "Nombre de usuario"}, nil)

	first := out[0].Fields[0]
	if first.Label != "Nombre de usuario" {
		t.Fatalf("expected translated label, got %q", first.Label)
	}
	if first.Description != "Public name" {
		t.Fatalf("expected description to fall back, got %q", first.Description)
	}
	if first.Placeholder != "shadcn" {
		t.Fatalf("placeholder without key changed: %q", first.Placeholder)
	}
	if got := out[1].Fields[0].Label; got != "fields.unknown" {
		t.Fatalf("expected key when no fallback exists, got %q", got)
	}
	if got := out[1].Fields[1].Label; got != "Untouched" {
		t.Fatalf("field without keys changed: %q", got)
	}
	if list[0].Fields[0].Label != "Username" {
		t.Fatalf("input list was modified")
	}
}

func TestLocalizeFieldList_OnMissingHandler(t *testing.T) {
	list := model.FieldList{
		model.Single(keyed(model.Field{Variant: "Input", Name: "name_1", Label: "Username"}, map[string]string{
			render.LabelKeyExtension: "fields.username.label",
		})),
	}

	var gotErr error
	out := render.LocalizeFieldList(list, "fr", nil, func(locale, key string, _ []any, err error) string {
		gotErr = err
		return strings.ToUpper(locale) + ":" + key
	})

	if !errors.Is(gotErr, render.ErrMissingTranslator) {
		t.Fatalf("expected ErrMissingTranslator, got %v", gotErr)
	}
	if got := out[0].Fields[0].Label; got != "FR:fields.username.label" {
		t.Fatalf("unexpected label %q", got)
	}
}
