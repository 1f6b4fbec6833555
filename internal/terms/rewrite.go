package terms

import (
	"fmt"

	"github.com/itsmostafa/autoindex/internal/pattern"
)

// RewriteRule maps a section title (or section id) to the title filed in the
// index.
type RewriteRule struct {
	// ByID matches Pattern against the section id and yields Replacement
	// verbatim. Otherwise Pattern is matched against the title and
	// Replacement is a substitution template ($1, $2...).
	ByID        bool
	Pattern     *pattern.Matcher
	Replacement string
}

// NewRewriteRule compiles expr into a rule.
func NewRewriteRule(expr, replacement string, byID bool) (RewriteRule, error) {
	m, err := pattern.Compile(expr, 0)
	if err != nil {
		return RewriteRule{}, fmt.Errorf("rewrite pattern %q: %w", expr, err)
	}
	return RewriteRule{ByID: byID, Pattern: m, Replacement: replacement}, nil
}

// apply returns the rewritten title and whether the rule fired. Rules match
// the whole title or id.
func (rule RewriteRule) apply(title, id string) (string, bool) {
	if rule.ByID {
		if rule.Pattern.Match(id) {
			return rule.Replacement, true
		}
		return "", false
	}
	return rule.Pattern.ReplaceWhole(title, rule.Replacement)
}

// AddRule appends rule; rules are tried in the order they were added.
func (r *Registry) AddRule(rule RewriteRule) {
	r.rules = append(r.rules, rule)
}

// Rules returns the rewrite rules in registration order.
func (r *Registry) Rules() []RewriteRule {
	return r.rules
}

// RewriteTitle applies the first matching rule to title. The title passes
// through unchanged when no rule matches.
func (r *Registry) RewriteTitle(title, id string) string {
	for _, rule := range r.rules {
		if out, ok := rule.apply(title, id); ok {
			return out
		}
	}
	return title
}
