package dispatch

import (
	"context"
	"fmt"

	"reindent/internal/adapter"
	"reindent/internal/indent"
	"reindent/internal/rules"
	"reindent/internal/trace"
)

// Strategy is one tier of the cascade.
type Strategy interface {
	Name() string
	Format(text string, unit indent.Unit) (string, error)
}

type adapterStrategy struct {
	name string
	f    adapter.Formatter
}

func (s adapterStrategy) Name() string { return s.name }

func (s adapterStrategy) Format(text string, unit indent.Unit) (string, error) {
	return s.f.TryFormat(text, adapter.OptionsFor(unit))
}

type ruleStrategy struct {
	ri indent.RuleIndenter
}

func (s ruleStrategy) Name() string { return "rules:" + s.ri.Rules.Name }

func (s ruleStrategy) Format(text string, unit indent.Unit) (string, error) {
	return s.ri.Format(text, unit)
}

type bracketStrategy struct{}

func (bracketStrategy) Name() string { return "brackets" }

func (bracketStrategy) Format(text string, unit indent.Unit) (string, error) {
	return indent.BracketIndenter{}.Format(text, unit)
}

// AdapterStrategy wraps a structured formatter as a strategy.
func AdapterStrategy(name string, f adapter.Formatter) Strategy {
	return adapterStrategy{name: "adapter:" + name, f: f}
}

// RuleStrategy wraps a rule set as a strategy.
func RuleStrategy(rs *rules.RuleSet) Strategy {
	return ruleStrategy{ri: indent.RuleIndenter{Rules: rs}}
}

// BracketStrategy is the terminal fallback.
var BracketStrategy Strategy = bracketStrategy{}

// Failure records a strategy that did not produce output.
type Failure struct {
	Strategy string
	Err      error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.Strategy, f.Err)
}

// Chain is an ordered list of strategies tried until one succeeds.
type Chain []Strategy

// Names returns the strategy names in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name()
	}
	return names
}

// Run tries each strategy in order and returns the first output along with
// the failures that preceded it. ok is false if every strategy failed.
func (c Chain) Run(ctx context.Context, text string, unit indent.Unit) (out, used string, failures []Failure, ok bool) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)
	for _, s := range c {
		span := trace.Begin(tracer, trace.ScopeTier, "tier:"+s.Name(), parent)
		res, err := attempt(s, text, unit)
		if err != nil {
			span.Fail(err)
			span.End("failed")
			failures = append(failures, Failure{Strategy: s.Name(), Err: err})
			continue
		}
		span.End("ok")
		return res, s.Name(), failures, true
	}
	return "", "", failures, false
}

// attempt runs s, converting a panic into an error.
func attempt(s Strategy, text string, unit indent.Unit) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Format(text, unit)
}
