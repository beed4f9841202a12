package formbuilder_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

const form = `[{"variant":"Input","name":"email","label":"Email","type":"email","required":true}]`

func TestGenerateCodeFromJSON(t *testing.T) {
	code, err := formbuilder.GenerateCodeFromJSON([]byte(form), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(code, "react-hook-form") {
		t.Fatalf("expected default target imports, got:\n%s", code)
	}

	code, err = formbuilder.GenerateCodeFromJSON([]byte(form), "TanStack Form")
	if err != nil {
		t.Fatalf("generate by label: %v", err)
	}
	if !strings.Contains(code, "@tanstack/react-form") {
		t.Fatalf("expected tanstack imports, got:\n%s", code)
	}

	if _, err := formbuilder.GenerateCodeFromJSON([]byte(form), "jquery"); !errors.Is(err, codegen.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
	if _, err := formbuilder.GenerateCodeFromJSON([]byte("{"), ""); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestReview(t *testing.T) {
	artifacts, err := formbuilder.Review(context.Background(), form, codegen.BringYourOwn)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if artifacts.Target != codegen.BringYourOwn || artifacts.Code == "" || artifacts.Preview == "" {
		t.Fatalf("incomplete artifacts: %+v", artifacts)
	}

	_, err = formbuilder.Review(context.Background(), "  ", "")
	if got := builder.Message(err); got != builder.EmptyReviewMessage {
		t.Fatalf("expected empty review message, got %q", got)
	}
}

func TestTemplates(t *testing.T) {
	matches, err := fs.Glob(formbuilder.Templates(), "*.tpl")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 6 {
		t.Fatalf("expected 6 templates, got %v", matches)
	}
}

func TestImportOpenAPI(t *testing.T) {
	list, err := formbuilder.ParseForm([]byte(form))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc, err := schema.MarshalOpenAPI(schema.DeriveValidation(list), "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	res, err := formbuilder.ImportOpenAPI(context.Background(), doc, openapi.Selection{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if model.Len(res.Fields) != model.Len(list) {
		t.Fatalf("expected %d fields, got %d", model.Len(list), model.Len(res.Fields))
	}
}
