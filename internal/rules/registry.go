package rules

import (
	"sort"
	"sync"

	"reindent/internal/lang"
)

// Registry maps languages to their rule sets. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	sets map[lang.Language]*RuleSet
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[lang.Language]*RuleSet)}
}

// DefaultRegistry returns a registry holding the builtin Python and Java rule sets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(lang.Python, Python)
	r.Register(lang.Java, Java)
	return r
}

// Register binds rs to l, replacing any previous binding. A nil rule set
// removes the binding.
func (r *Registry) Register(l lang.Language, rs *RuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rs == nil {
		delete(r.sets, l)
		return
	}
	r.sets[l] = rs
}

// Lookup returns the rule set bound to l.
func (r *Registry) Lookup(l lang.Language) (*RuleSet, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.sets[l]
	return rs, ok
}

// Languages returns the languages with a bound rule set, sorted by name.
func (r *Registry) Languages() []lang.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]lang.Language, 0, len(r.sets))
	for l := range r.sets {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
