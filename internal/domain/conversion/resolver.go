// Package conversion resolves conversion factors from an ordered rule table.
package conversion

import (
	"github.com/okian/bakeconv/internal/domain/model"
)

// Resolver finds the factor converting from one unit to another.
type Resolver interface {
	// Resolve returns the factor for from -> to. Inputs are compared as-is;
	// callers lowercase them. An empty ingredient means none was supplied.
	Resolve(from, to, ingredient string) (float64, bool)
}

// TableResolver scans an immutable rule table in order. The first rule for
// the unit pair that yields a factor wins, so a universal rule placed before
// an ingredient-specific one for the same pair shadows it.
type TableResolver struct {
	rules []model.Rule
}

// NewTableResolver creates a resolver over a private copy of rules.
func NewTableResolver(rules []model.Rule) *TableResolver {
	cp := make([]model.Rule, len(rules))
	copy(cp, rules)
	return &TableResolver{rules: cp}
}

// Resolve implements Resolver.
func (r *TableResolver) Resolve(from, to, ingredient string) (float64, bool) {
	for _, rule := range r.rules {
		if !rule.Matches(from, to) || rule.Factor == nil {
			continue
		}
		if f, ok := rule.Factor.FactorFor(ingredient); ok {
			return f, true
		}
	}
	return 0, false
}

// Len returns the number of rules the resolver scans.
func (r *TableResolver) Len() int {
	return len(r.rules)
}
