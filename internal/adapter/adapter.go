package adapter

import (
	"strings"
	"sync"

	"reindent/internal/indent"
	"reindent/internal/lang"
)

// Options carries the indentation request to a formatter.
type Options struct {
	IndentWidth int
	UseTabs     bool
}

// OptionsFor converts an indent unit into formatter options.
func OptionsFor(u indent.Unit) Options {
	u = u.WithDefaults()
	return Options{IndentWidth: u.Width, UseTabs: u.Kind == indent.Tab}
}

// Unit returns the text of one indentation level.
func (o Options) Unit() string {
	if o.UseTabs {
		return "\t"
	}
	if o.IndentWidth < 1 {
		return strings.Repeat(" ", indent.DefaultWidth)
	}
	return strings.Repeat(" ", o.IndentWidth)
}

// Formatter is a structured formatter for one language family.
type Formatter interface {
	TryFormat(text string, opts Options) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(text string, opts Options) (string, error)

// TryFormat calls f.
func (f FormatterFunc) TryFormat(text string, opts Options) (string, error) {
	return f(text, opts)
}

// Registry records which languages have a structured formatter available.
// It is safe for concurrent use.
type Registry struct {
	mu sync.RWMutex
	m  map[lang.Language]Formatter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[lang.Language]Formatter)}
}

// DefaultRegistry returns a registry with the bundled markup, stylesheet and
// script formatters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(lang.Markup, Markup{})
	r.Register(lang.Stylesheet, Stylesheet{})
	r.Register(lang.Script, Script{})
	return r
}

// Register binds f to l. A nil formatter removes the binding, which makes the
// capability absent for l.
func (r *Registry) Register(l lang.Language, f Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f == nil {
		delete(r.m, l)
		return
	}
	r.m[l] = f
}

// Lookup returns the formatter for l, if present.
func (r *Registry) Lookup(l lang.Language) (Formatter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.m[l]
	return f, ok
}
