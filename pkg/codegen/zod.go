package codegen

import (
	"strconv"

	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// zodEntries renders one `key: expression,` line per rule.
func zodEntries(spec schema.Spec) []string {
	out := make([]string, 0, len(spec.Rules))
	for _, rule := range spec.Rules {
		out = append(out, propertyKey(rule.Name)+": "+ZodExpression(rule)+",")
	}
	return out
}

// ZodExpression renders rule as a zod schema expression. Messages match the
// ones produced by schema.Validate.
func ZodExpression(rule schema.Rule) string {
	name := rule.DisplayName()
	switch rule.Kind {
	case variants.KindText:
		expr := "z.string()"
		if rule.Required {
			expr += ".trim().min(1, " + message(name+" is required") + ")"
		}
		if rule.Length > 0 {
			n := strconv.Itoa(rule.Length)
			expr += ".length(" + n + ", " + message(name+" must be "+n+" characters") + ")"
		}
		if rule.Pattern != "" {
			label := rule.PatternLabel
			if label == "" {
				label = "the expected format"
			}
			expr += ".regex(" + jsRegex(rule.Pattern) + ", " + message(name+" must be a valid "+label) + ")"
		}
		if !rule.Required {
			if rule.Length > 0 || rule.Pattern != "" {
				expr += `.optional().or(z.literal(""))`
			} else {
				expr += ".optional()"
			}
		}
		return expr

	case variants.KindNumber:
		expr := "z.number({ required_error: " + jsString(name+" is required") +
			", invalid_type_error: " + jsString(name+" must be a number") + " })"
		if rule.Min != nil {
			expr += ".min(" + number(*rule.Min) + ", " + message(name+" must be at least "+number(*rule.Min)) + ")"
		}
		if rule.Max != nil {
			expr += ".max(" + number(*rule.Max) + ", " + message(name+" must be at most "+number(*rule.Max)) + ")"
		}
		if rule.Step != nil && *rule.Step > 0 {
			expr += ".refine(" + stepCheck(rule.StepBase(), *rule.Step) + ", " + message(rule.StepMessage()) + ")"
		}
		return "z.preprocess(" + blankToUndefined + ", " + optional(expr, rule) + ")"

	case variants.KindBool:
		if rule.MustBeTrue {
			return "z.boolean().refine((value) => value === true, " + message(name+" must be checked") + ")"
		}
		return optional("z.boolean()", rule)

	case variants.KindList:
		expr := "z.array(z.string())"
		if rule.Required {
			expr += ".min(1, " + message(name+" is required") + ")"
		}
		return optional(expr, rule)

	case variants.KindDate:
		expr := "z.string()"
		if rule.Required {
			expr += ".min(1, " + message(name+" is required") + ")"
		}
		expr += `.refine((value) => value === "" || !Number.isNaN(Date.parse(value)), ` + message(name+" must be a valid date") + ")"
		return optional(expr, rule)

	default:
		if rule.Required {
			return `z.any().refine((value) => value !== undefined && value !== null && value !== "", ` + message(name+" is required") + ")"
		}
		return "z.any()"
	}
}

// blankToUndefined maps blank inputs to undefined so they count as missing,
// and converts everything else with Number.
const blankToUndefined = `(value) => (value == null || String(value).trim() === "" ? undefined : Number(value))`

// stepCheck renders a predicate accepting values on the grid base + k*step,
// with the same tolerance as schema.Validate.
func stepCheck(base, step float64) string {
	offset := "value"
	if base != 0 {
		offset = "(value - " + number(base) + ")"
	}
	q := offset + " / " + number(step)
	return "(value) => Math.abs(" + q + " - Math.round(" + q + ")) < 1e-9"
}

func optional(expr string, rule schema.Rule) string {
	if rule.Required {
		return expr
	}
	return expr + ".optional()"
}

func message(text string) string {
	return "{ message: " + jsString(text) + " }"
}

// propertyKey renders name as an object literal key, quoting it unless it is
// a plain identifier.
func propertyKey(name string) string {
	if name != "" && jsIdent(name) == name {
		return name
	}
	return jsString(name)
}
