package codegen

import "strings"

// Formatter post-processes generated source. Implementations must be
// deterministic and idempotent.
type Formatter func(src string) string

// Format normalises whitespace: line endings become LF, leading tabs become
// two spaces, trailing whitespace is removed, runs of blank lines collapse to
// one, and the text ends with exactly one newline. Generated code never
// carries multi-line string literals, so none of this changes its meaning.
func Format(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")

	in := strings.Split(src, "\n")
	out := make([]string, 0, len(in))
	blank := false
	for _, line := range in {
		line = strings.TrimRight(expandTabs(line), " \t")
		if line == "" {
			if len(out) == 0 || blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

func expandTabs(line string) string {
	i := 0
	for i < len(line) && (line[i] == '\t' || line[i] == ' ') {
		i++
	}
	if !strings.Contains(line[:i], "\t") {
		return line
	}
	return strings.ReplaceAll(line[:i], "\t", "  ") + line[i:]
}
