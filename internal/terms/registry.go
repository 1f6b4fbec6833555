// Package terms holds the registry of index terms, the title rewrite rules
// and the line-oriented script language that populates them.
package terms

import (
	"fmt"
	"slices"
	"sort"

	"github.com/itsmostafa/autoindex/internal/pattern"
)

// Source kinds that carry a configurable match template. Macros are matched
// by bare name only.
const (
	KindClass    = "class"
	KindTypedef  = "typedef"
	KindMacro    = "macro"
	KindFunction = "function"
)

// Term describes one index term.
type Term struct {
	// Term is the display text filed in the index.
	Term string
	// Match is tested against text nodes of the document.
	Match *pattern.Matcher
	// Zone, when set, must be found in the enclosing section id.
	Zone *pattern.Matcher
	// Category labels the term, e.g. "class_name".
	Category string
}

// Template is the prefix and suffix wrapped around a harvested name.
type Template struct {
	Prefix string
	Suffix string
}

// Registry is an ordered multi-valued store of terms keyed by Term. Terms
// sharing a key keep their registration order.
type Registry struct {
	terms     []*Term
	templates map[string]Template
	rules     []RewriteRule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

// Add inserts t after any terms with the same key.
func (r *Registry) Add(t *Term) {
	i := sort.Search(len(r.terms), func(i int) bool { return r.terms[i].Term > t.Term })
	r.terms = slices.Insert(r.terms, i, t)
}

// AddExplicit compiles and registers a declared term. An empty match pattern
// defaults to a case-insensitive whole-word match of term; an empty zone
// pattern means no constraint.
func (r *Registry) AddExplicit(term, match, zone, category string) (*Term, error) {
	if term == "" {
		return nil, fmt.Errorf("empty index term")
	}
	if match == "" {
		match = pattern.Term(term)
	}
	m, err := pattern.Compile(match, pattern.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("term %q: match pattern %q: %w", term, match, err)
	}
	t := &Term{Term: term, Match: m, Category: category}
	if zone != "" {
		z, err := pattern.Compile(zone, 0)
		if err != nil {
			return nil, fmt.Errorf("term %q: section id pattern %q: %w", term, zone, err)
		}
		t.Zone = z
	}
	r.Add(t)
	return t, nil
}

// Has reports whether any term is registered under key.
func (r *Registry) Has(key string) bool {
	i := sort.Search(len(r.terms), func(i int) bool { return r.terms[i].Term >= key })
	return i < len(r.terms) && r.terms[i].Term == key
}

// Remove drops every term registered under key and reports how many were
// removed. Removing an unknown key is a no-op.
func (r *Registry) Remove(key string) int {
	before := len(r.terms)
	r.terms = slices.DeleteFunc(r.terms, func(t *Term) bool { return t.Term == key })
	return before - len(r.terms)
}

// Terms returns the registered terms in key order.
func (r *Registry) Terms() []*Term {
	return r.terms
}

// Len returns the number of registered terms.
func (r *Registry) Len() int {
	return len(r.terms)
}

// SetTemplate overrides the match template used for names of the given kind
// found by source scanning.
func (r *Registry) SetTemplate(kind, prefix, suffix string) error {
	switch kind {
	case KindClass, KindTypedef, KindFunction:
	default:
		return fmt.Errorf("no configurable match template for %q (want %s, %s or %s)",
			kind, KindClass, KindFunction, KindTypedef)
	}
	r.templates[kind] = Template{Prefix: prefix, Suffix: suffix}
	return nil
}

// Template returns the template for kind; the zero Template when unset.
func (r *Registry) Template(kind string) Template {
	return r.templates[kind]
}
