package dispatch

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"reindent/internal/adapter"
	"reindent/internal/indent"
	"reindent/internal/lang"
	"reindent/internal/rules"
)

// Request is one formatting job.
type Request struct {
	Text     string
	Language lang.Language
	Unit     indent.Unit
}

// Result is the formatted text plus the degraded-result advisory.
type Result struct {
	Text     string
	Strategy string // name of the strategy that produced Text
	Degraded bool   // an earlier strategy failed
	Reason   string // human-readable summary of the failures
	Failures []Failure
}

// Dispatcher selects strategies by language. The zero value is not usable;
// construct one with New.
type Dispatcher struct {
	adapters *adapter.Registry
	rules    *rules.Registry
	logger   zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAdapters replaces the structured formatter registry. A nil registry
// disables the structured tier.
func WithAdapters(r *adapter.Registry) Option {
	return func(d *Dispatcher) { d.adapters = r }
}

// WithRules replaces the rule set registry.
func WithRules(r *rules.Registry) Option {
	return func(d *Dispatcher) { d.rules = r }
}

// WithLogger sets the logger used for fallback notices.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New returns a dispatcher with the default adapter and rule registries.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		adapters: adapter.DefaultRegistry(),
		rules:    rules.DefaultRegistry(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Strategies returns the cascade for l. The bracket indenter is always last.
func (d *Dispatcher) Strategies(l lang.Language) Chain {
	var chain Chain
	if f, ok := d.adapters.Lookup(l); ok {
		chain = append(chain, AdapterStrategy(l.String(), f))
	}
	if rs, ok := d.rules.Lookup(l); ok {
		chain = append(chain, RuleStrategy(rs))
	}
	return append(chain, BracketStrategy)
}

// Dispatch formats req.Text. It always returns a usable result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	unit := req.Unit.WithDefaults()
	out, used, failures, ok := d.Strategies(req.Language).Run(ctx, req.Text, unit)
	if !ok {
		// Unreachable while BracketStrategy terminates every chain.
		out, _ = indent.BracketIndenter{}.Format(req.Text, unit)
		used = BracketStrategy.Name()
	}

	res := Result{Text: out, Strategy: used, Failures: failures}
	if len(failures) > 0 {
		res.Degraded = true
		res.Reason = reason(failures)
		d.logger.Debug().
			Str("language", req.Language.String()).
			Str("strategy", used).
			Str("reason", res.Reason).
			Msg("Used fallback formatter")
	}
	return res
}

func reason(failures []Failure) string {
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}
