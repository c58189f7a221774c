package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 3

var (
	diffHeaderColor = color.New(color.Bold)
	diffHunkColor   = color.New(color.FgCyan)
	diffDelColor    = color.New(color.FgRed)
	diffAddColor    = color.New(color.FgGreen)
)

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// lineDiff computes a line-oriented diff of a and b.
func lineDiff(a, b string) []diffLine {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []diffLine
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			out = append(out, diffLine{op: d.Type, text: line})
		}
	}
	return out
}

// renderDiff writes a unified-style diff between original and formatted.
// Nothing is written when they are equal.
func renderDiff(w io.Writer, path string, original, formatted []byte) {
	if string(original) == string(formatted) {
		return
	}
	lines := lineDiff(string(original), string(formatted))

	diffHeaderColor.Fprintf(w, "--- %s\n", path)
	diffHeaderColor.Fprintf(w, "+++ %s (reindented)\n", path)

	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.op == diffmatchpatch.DiffEqual {
			continue
		}
		for j := max(0, i-diffContext); j <= min(len(lines)-1, i+diffContext); j++ {
			keep[j] = true
		}
	}

	skipped := true
	for i, l := range lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped {
			diffHunkColor.Fprintf(w, "@@ line %d @@\n", originalLine(lines, i))
			skipped = false
		}
		switch l.op {
		case diffmatchpatch.DiffDelete:
			diffDelColor.Fprintf(w, "-%s\n", l.text)
		case diffmatchpatch.DiffInsert:
			diffAddColor.Fprintf(w, "+%s\n", l.text)
		default:
			fmt.Fprintf(w, " %s\n", l.text)
		}
	}
}

// originalLine returns the 1-based line number in the original text at
// diff index idx.
func originalLine(lines []diffLine, idx int) int {
	n := 1
	for _, l := range lines[:idx] {
		if l.op != diffmatchpatch.DiffInsert {
			n++
		}
	}
	return n
}
