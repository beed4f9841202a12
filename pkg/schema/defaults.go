package schema

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// DeriveDefaults returns the initial form state: one key per field in the
// flattened list, group members included. A field's value is used when it
// matches the variant's value shape, otherwise the variant's empty default
// applies ("" for text and dates, false for booleans, an empty list for
// multi-valued variants). Numeric fields fall back to their lower bound when
// one exists and to "" otherwise so required checks still fire.
func DeriveDefaults(list model.FieldList, opts ...Option) map[string]any {
	cfg := newOptions(opts)
	out := make(map[string]any, model.Len(list))
	for _, field := range model.Flatten(list) {
		out[field.Name] = defaultFor(cfg.table, field)
	}
	return out
}

func defaultFor(table *variants.Table, field model.Field) any {
	constraint := table.Constraint(field)
	value := field.Value

	switch constraint.Kind {
	case variants.KindBool:
		if value.Kind == model.KindBool {
			return value.Bool
		}
		return false

	case variants.KindNumber:
		switch value.Kind {
		case model.KindNumber:
			return value.Num
		case model.KindString:
			if n, err := strconv.ParseFloat(strings.TrimSpace(value.Str), 64); err == nil {
				return n
			}
		}
		if bound := firstFloat(field.Min, constraint.DefaultMin); bound != nil {
			return *bound
		}
		return ""

	case variants.KindList:
		if value.Kind == model.KindStrings {
			return append([]string{}, value.Strs...)
		}
		return []string{}

	case variants.KindAny:
		return value.Interface()

	default:
		if value.Kind == model.KindString {
			return value.Str
		}
		return ""
	}
}
