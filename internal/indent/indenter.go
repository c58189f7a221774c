package indent

import (
	"errors"
	"strings"

	"reindent/internal/rules"
)

// ErrNoRuleSet is returned by RuleIndenter when it carries no rule set.
var ErrNoRuleSet = errors.New("indent: no rule set")

// RuleIndenter applies a declarative rule set.
type RuleIndenter struct {
	Rules *rules.RuleSet
}

// Format re-indents text according to the rule set.
func (r RuleIndenter) Format(text string, unit Unit) (string, error) {
	if r.Rules == nil {
		return "", ErrNoRuleSet
	}
	return Walk(text, unit, r.Rules), nil
}

// Brackets is the rule-free shape: a line opening with a closing bracket
// dedents, a line ending in an opening bracket or a colon indents.
var Brackets Shape = bracketShape{}

type bracketShape struct{}

func (bracketShape) Dedent(line string) bool {
	return strings.HasPrefix(line, "}") || strings.HasPrefix(line, ")") || strings.HasPrefix(line, "]")
}

func (bracketShape) Indent(line string) bool {
	return strings.HasSuffix(line, "{") || strings.HasSuffix(line, "(") ||
		strings.HasSuffix(line, "[") || strings.HasSuffix(line, ":")
}

// BracketIndenter is the language-agnostic fallback. It never fails.
type BracketIndenter struct{}

// Format re-indents text by bracket and colon shape.
func (BracketIndenter) Format(text string, unit Unit) (string, error) {
	return Walk(text, unit, Brackets), nil
}
