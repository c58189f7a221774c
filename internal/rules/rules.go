package rules

import (
	"fmt"
	"regexp"
)

// Matcher is a predicate over a single trimmed line. *regexp.Regexp satisfies it.
type Matcher interface {
	MatchString(s string) bool
}

// RuleSet describes which line shapes open and close an indentation level.
type RuleSet struct {
	Name     string
	Increase []Matcher
	Decrease []Matcher
}

// Indent reports whether line opens a level for the lines that follow it.
func (r *RuleSet) Indent(line string) bool {
	return r != nil && FirstMatch(r.Increase, line) >= 0
}

// Dedent reports whether line closes a level before it is emitted.
func (r *RuleSet) Dedent(line string) bool {
	return r != nil && FirstMatch(r.Decrease, line) >= 0
}

// FirstMatch returns the index of the first matcher accepting line, or -1.
func FirstMatch(matchers []Matcher, line string) int {
	for i, m := range matchers {
		if m != nil && m.MatchString(line) {
			return i
		}
	}
	return -1
}

// Declare compiles increase and decrease pattern lists into a rule set.
// Pattern order is preserved.
func Declare(name string, increase, decrease []string) (*RuleSet, error) {
	inc, err := compileAll(name, "increase", increase)
	if err != nil {
		return nil, err
	}
	dec, err := compileAll(name, "decrease", decrease)
	if err != nil {
		return nil, err
	}
	return &RuleSet{Name: name, Increase: inc, Decrease: dec}, nil
}

// MustDeclare is like Declare but panics on an invalid pattern. It is meant
// for package-level rule tables.
func MustDeclare(name string, increase, decrease []string) *RuleSet {
	rs, err := Declare(name, increase, decrease)
	if err != nil {
		panic(err)
	}
	return rs
}

func compileAll(name, kind string, patterns []string) ([]Matcher, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]Matcher, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("rules: %s: %s pattern %d %q: %w", name, kind, i, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
