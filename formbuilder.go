// Package formbuilder turns a list of form fields into the artifacts of a
// form: its JSON document, a component for a chosen form library, an OpenAPI
// validation schema and a sanitized HTML preview.
//
// The root package offers one-call entry points. Interactive editing lives in
// pkg/builder; the pieces it composes live in pkg/codec, pkg/codegen,
// pkg/schema and pkg/render.
package formbuilder

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

// Field aliases model.Field.
type Field = model.Field

// FieldList aliases model.FieldList.
type FieldList = model.FieldList

// Artifacts aliases builder.Artifacts.
type Artifacts = builder.Artifacts

// ParseForm hydrates a form JSON document.
func ParseForm(data []byte) (FieldList, error) {
	return codec.Hydrate(data)
}

// GenerateCode emits the component for list in the idiom of target, an
// identifier or label of a built-in form library. An empty target selects
// the default library.
func GenerateCode(list FieldList, target string) (string, error) {
	id, err := codegen.ParseTarget(target)
	if err != nil {
		return "", err
	}
	return codegen.Generate(list, id)
}

// GenerateCodeFromJSON is GenerateCode over a form JSON document.
func GenerateCodeFromJSON(data []byte, target string) (string, error) {
	list, err := codec.Hydrate(data)
	if err != nil {
		return "", err
	}
	return GenerateCode(list, target)
}

// Review renders every artifact of pasted form JSON without keeping any
// state. Use builder.Message to turn a failure into user-facing text.
func Review(ctx context.Context, text, target string, options ...builder.Option) (Artifacts, error) {
	session, err := builder.New(ctx, options...)
	if err != nil {
		return Artifacts{}, err
	}
	return session.Review(text, target)
}

// NewSession starts an editing session. See builder.New.
func NewSession(ctx context.Context, options ...builder.Option) (*builder.Session, error) {
	return builder.New(ctx, options...)
}

// ImportOpenAPI converts an object schema of an OpenAPI document (JSON or
// YAML) into a field list. Properties with no field equivalent are reported
// in the result instead of failing the import.
func ImportOpenAPI(ctx context.Context, data []byte, sel openapi.Selection) (openapi.Result, error) {
	doc, err := openapi.DocumentFromData(data)
	if err != nil {
		return openapi.Result{}, err
	}
	return openapi.Fields(ctx, doc, sel)
}

// Templates exposes the embedded code generation templates so callers can
// extend them through codegen.WithTemplateRenderer.
func Templates() fs.FS {
	return codegen.Templates()
}
