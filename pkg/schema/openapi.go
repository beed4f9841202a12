package schema

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// FormSchemaName is the component name used by Document.
const FormSchemaName = "Form"

// notBlank rejects empty and whitespace-only strings.
const notBlank = `\S`

// OpenAPI converts spec into an object schema describing the coerced value
// map accepted by Validate.
func OpenAPI(spec Spec) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	var required []string
	for i, rule := range spec.Rules {
		prop := propertySchema(rule)
		setExtension(prop, "x-order", i)
		root.WithProperty(rule.Name, prop)
		if rule.Required {
			required = append(required, rule.Name)
		}
	}
	if len(required) > 0 {
		root.WithRequired(required)
	}
	return root
}

func propertySchema(rule Rule) *openapi3.Schema {
	var s *openapi3.Schema
	switch rule.Kind {
	case variants.KindText:
		s = openapi3.NewStringSchema()
		switch {
		case rule.Pattern != "" && rule.Required:
			s.WithPattern(rule.Pattern)
		case rule.Pattern != "":
			s.WithPattern("^$|(?:" + rule.Pattern + ")")
		case rule.Required:
			s.WithPattern(notBlank)
		}
		if rule.Required {
			s.WithMinLength(1)
			if rule.Length > 0 {
				s.WithLength(int64(rule.Length))
			}
		}
		if rule.Format != "" {
			setExtension(s, "x-format", rule.Format)
		}

	case variants.KindNumber:
		s = openapi3.NewFloat64Schema()
		if rule.Min != nil {
			s.WithMin(*rule.Min)
		}
		if rule.Max != nil {
			s.WithMax(*rule.Max)
		}
		if rule.Step != nil {
			step := *rule.Step
			if rule.StepBase() == 0 {
				s.MultipleOf = &step
			} else {
				// multipleOf counts from zero; steps from a lower bound
				// travel as an extension.
				setExtension(s, "x-step", step)
			}
		}

	case variants.KindBool:
		s = openapi3.NewBoolSchema()
		if rule.MustBeTrue {
			s.WithEnum(true)
		}

	case variants.KindList:
		s = openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
		if rule.Required {
			s.WithMinItems(1)
		}

	case variants.KindDate:
		s = openapi3.NewStringSchema()
		s.Description = "RFC 3339 date-time or YYYY-MM-DD date"
		if rule.Required {
			s.WithMinLength(1).WithPattern(notBlank)
		}
		setExtension(s, "x-format", "date")

	default:
		s = openapi3.NewSchema()
	}

	s.Title = rule.Label
	setExtension(s, "x-variant", rule.Variant)
	return s
}

func setExtension(s *openapi3.Schema, key string, value any) {
	if s.Extensions == nil {
		s.Extensions = make(map[string]any)
	}
	s.Extensions[key] = value
}

// Document wraps the form schema in an OpenAPI 3 document under
// components.schemas.Form.
func Document(spec Spec, title, version string) *openapi3.T {
	if title == "" {
		title = "Form"
	}
	if version == "" {
		version = "1.0.0"
	}
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				FormSchemaName: openapi3.NewSchemaRef("", OpenAPI(spec)),
			},
		},
	}
}

// MarshalOpenAPI renders Document as indented JSON.
func MarshalOpenAPI(spec Spec, title string) ([]byte, error) {
	doc := Document(spec, title, "")
	data, err := json.MarshalIndentWithOption(doc, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return nil, fmt.Errorf("schema: marshal openapi document: %w", err)
	}
	return data, nil
}
