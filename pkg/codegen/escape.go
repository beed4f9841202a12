package codegen

import (
	"strconv"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"
)

// marshalJS encodes v as JSON text without HTML escaping; the output lands in
// source code, not in HTML.
func marshalJS(v any) ([]byte, error) {
	return json.MarshalWithOption(v, json.DisableHTMLEscape())
}

// jsString quotes s as a double-quoted JavaScript string literal.
func jsString(s string) string {
	out, err := marshalJS(s)
	if err != nil {
		return strconv.Quote(s)
	}
	// U+2028 and U+2029 are line terminators in older JavaScript engines.
	text := strings.ReplaceAll(string(out), "\u2028", `\u2028`)
	return strings.ReplaceAll(text, "\u2029", `\u2029`)
}

// jsLiteral encodes a decoded JSON value as a JavaScript expression.
func jsLiteral(v any) string {
	out, err := marshalJS(v)
	if err != nil {
		return "undefined"
	}
	return string(out)
}

const jsxSpecial = "{}<>&\"'`\\\n\r\t"

// jsxText renders s as JSX child text. Text with characters JSX would
// interpret, or whitespace it would collapse, becomes a string expression.
func jsxText(s string) string {
	if s == "" || !strings.ContainsAny(s, jsxSpecial) && s == strings.TrimSpace(s) {
		return s
	}
	return "{" + jsString(s) + "}"
}

// jsxAttr renders s as a JSX attribute value, including the braces or quotes.
func jsxAttr(s string) string {
	if !strings.ContainsAny(s, jsxSpecial) {
		return `"` + s + `"`
	}
	return "{" + jsString(s) + "}"
}

// jsComment makes s safe inside a /* */ block comment.
func jsComment(s string) string {
	s = strings.ReplaceAll(s, "*/", "* /")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// jsRegex renders an RE2 pattern as a JavaScript regular expression literal.
func jsRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('/')
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '/':
			b.WriteByte('\\')
		case r == '\n':
			b.WriteString(`\n`)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('/')
	return b.String()
}

// identifiers hands out unique JavaScript identifiers derived from field
// names.
type identifiers struct {
	used map[string]int
}

func newIdentifiers(reserved ...string) *identifiers {
	ids := &identifiers{used: make(map[string]int)}
	for _, name := range reserved {
		ids.used[name] = 1
	}
	return ids
}

func (ids *identifiers) next(name, suffix string) string {
	base := jsIdent(name) + suffix
	count := ids.used[base]
	ids.used[base] = count + 1
	if count == 0 {
		return base
	}
	candidate := base + strconv.Itoa(count+1)
	for ids.used[candidate] > 0 {
		count++
		candidate = base + strconv.Itoa(count+1)
	}
	ids.used[candidate] = 1
	return candidate
}

// jsIdent converts name into a valid identifier: invalid characters become
// underscores and a leading digit gets an underscore prefix.
func jsIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		valid := r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))
		if i == 0 && unicode.IsDigit(r) {
			b.WriteByte('_')
			valid = true
		}
		if r > unicode.MaxASCII {
			valid = false
		}
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "field"
	}
	return b.String()
}
