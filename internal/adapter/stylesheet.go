package adapter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

var (
	// ErrEmptyStylesheet is returned when text holds no rules.
	ErrEmptyStylesheet = errors.New("stylesheet: no rules")
	// ErrStylesheetComments is returned for input with comments, which the
	// parser discards.
	ErrStylesheetComments = errors.New("stylesheet: comments cannot be preserved")
	// ErrUnbalancedStylesheet is returned when blocks do not nest cleanly.
	ErrUnbalancedStylesheet = errors.New("stylesheet: unbalanced braces")
)

// Stylesheet re-prints CSS with one declaration per line. Input it cannot
// print losslessly is refused so a line-based tier can take over.
type Stylesheet struct{}

// TryFormat parses text as CSS and prints it with the requested indentation.
func (Stylesheet) TryFormat(text string, opts Options) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyStylesheet
	}
	if strings.Contains(text, "/*") {
		return "", ErrStylesheetComments
	}
	if strings.Count(text, "{") != strings.Count(text, "}") {
		return "", ErrUnbalancedStylesheet
	}
	sheet, err := parser.Parse(text)
	if err != nil {
		return "", fmt.Errorf("stylesheet: %w", err)
	}
	if len(sheet.Rules) == 0 {
		return "", ErrEmptyStylesheet
	}
	for _, rule := range sheet.Rules {
		if err := checkRule(rule); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	unit := opts.Unit()
	for i, rule := range sheet.Rules {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeRule(&b, rule, 0, unit)
	}
	return b.String(), nil
}

// checkRule rejects rules where a brace ended up inside a selector, prelude
// or declaration, which is how the parser recovers from a missing "}".
func checkRule(rule *css.Rule) error {
	parts := append([]string{rule.Name, rule.Prelude}, rule.Selectors...)
	for _, decl := range rule.Declarations {
		parts = append(parts, decl.Property, decl.Value)
	}
	for _, part := range parts {
		if strings.ContainsAny(part, "{}") {
			return fmt.Errorf("%w: %q", ErrUnbalancedStylesheet, strings.TrimSpace(part))
		}
	}
	for _, sub := range rule.Rules {
		if err := checkRule(sub); err != nil {
			return err
		}
	}
	return nil
}

func writeRule(b *strings.Builder, rule *css.Rule, depth int, unit string) {
	prefix := strings.Repeat(unit, depth)
	b.WriteString(prefix)
	if rule.Kind == css.QualifiedRule {
		b.WriteString(strings.Join(rule.Selectors, ", "))
	} else {
		b.WriteString(rule.Name)
		if rule.Prelude != "" {
			b.WriteByte(' ')
			b.WriteString(rule.Prelude)
		}
	}

	if len(rule.Declarations) == 0 && len(rule.Rules) == 0 {
		if rule.Kind == css.QualifiedRule {
			b.WriteString(" {}")
		} else {
			b.WriteByte(';')
		}
		return
	}

	b.WriteString(" {\n")
	for _, sub := range rule.Rules {
		writeRule(b, sub, depth+1, unit)
		b.WriteByte('\n')
	}
	for _, decl := range rule.Declarations {
		b.WriteString(prefix)
		b.WriteString(unit)
		b.WriteString(decl.Property)
		b.WriteString(": ")
		b.WriteString(decl.Value)
		if decl.Important {
			b.WriteString(" !important")
		}
		b.WriteString(";\n")
	}
	b.WriteString(prefix)
	b.WriteByte('}')
}
