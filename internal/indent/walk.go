package indent

import "strings"

// Shape classifies trimmed lines. Dedent is consulted before a line is
// written, Indent after.
type Shape interface {
	Dedent(line string) bool
	Indent(line string) bool
}

// Walk re-indents text in a single pass using shape.
func Walk(text string, unit Unit, shape Shape) string {
	lines := strings.Split(text, "\n")
	step := unit.String()

	var b strings.Builder
	b.Grow(len(text) + len(lines)*len(step))

	level := 0
	for i, raw := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if shape.Dedent(line) && level > 0 {
			level--
		}
		for range level {
			b.WriteString(step)
		}
		b.WriteString(line)
		if shape.Indent(line) {
			level++
		}
	}
	return b.String()
}
