package render

import (
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = sync.OnceValue(bluemonday.StrictPolicy)
	formPolicy = sync.OnceValue(newFormPolicy)
)

// Policy returns the policy applied to preview markup. It admits the form
// elements and attributes the built-in controls emit and strips everything
// else, including event handler attributes and script content.
func Policy() *bluemonday.Policy {
	return formPolicy()
}

func newFormPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"form", "div", "span", "p", "small", "strong",
		"label", "input", "select", "option", "textarea", "button",
		"fieldset", "legend", "canvas", "ul", "li",
	)
	p.AllowAttrs(
		"class", "id", "name", "type", "value", "placeholder",
		"min", "max", "step", "checked", "disabled", "required", "selected",
		"multiple", "rows", "maxlength", "inputmode", "autocomplete",
		"for", "role", "tabindex", "width", "height", "accept", "novalidate",
		"aria-invalid", "aria-describedby", "aria-checked", "aria-selected",
		"aria-expanded", "aria-label", "aria-pressed", "aria-hidden",
	).Globally()
	p.AllowDataAttributes()
	return p
}

// text strips markup from user supplied text and escapes it for use in
// element content and double-quoted attribute values.
func text(s string) string {
	if s == "" {
		return ""
	}
	return textPolicy().Sanitize(s)
}

type attr struct {
	key   string
	value string
	// flag renders a boolean attribute without a value.
	flag bool
}

func a(key, value string) attr { return attr{key: key, value: value} }

func flag(key string, on bool) attr {
	if !on {
		return attr{}
	}
	return attr{key: key, flag: true}
}

func writeAttrs(b *strings.Builder, attrs []attr) {
	for _, at := range attrs {
		if at.key == "" || at.value == "" && !at.flag && at.key != "value" {
			continue
		}
		if at.flag {
			b.WriteString(" " + at.key)
			continue
		}
		b.WriteString(" " + at.key + `="` + text(at.value) + `"`)
	}
}

func open(tag string, attrs ...attr) string {
	var b strings.Builder
	b.WriteString("<" + tag)
	writeAttrs(&b, attrs)
	b.WriteString(">")
	return b.String()
}

func el(tag string, attrs []attr, children ...string) string {
	return open(tag, attrs...) + strings.Join(children, "") + "</" + tag + ">"
}

func classes(names ...string) string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, " ")
}

// cssVarsStyle renders theme CSS variables as a style attribute value.
// Entries whose key is not a custom property name, or whose value could
// break out of the declaration, are dropped.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if validCSSVar(key, vars[key]) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+strings.TrimSpace(vars[key]))
	}
	return strings.Join(parts, "; ")
}

func validCSSVar(key, value string) bool {
	if !strings.HasPrefix(key, "--") || len(key) == 2 {
		return false
	}
	for _, r := range key[2:] {
		if !(r == '-' || r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	value = strings.TrimSpace(value)
	return value != "" && !strings.ContainsAny(value, ";{}<>\"\\")
}
