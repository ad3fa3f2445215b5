// Package model contains domain models passed between layers.
package model

// Rule is one directed unit conversion from the conversion table.
type Rule struct {
	From   string // source unit, lowercase
	To     string // target unit, lowercase
	Factor Factor // Universal or PerIngredient
}

// Factor yields the multiplier of a rule for an ingredient.
// Implementations are Universal and PerIngredient only.
type Factor interface {
	// FactorFor returns the multiplier for ingredient. An empty ingredient
	// means the caller did not supply one.
	FactorFor(ingredient string) (float64, bool)

	factor()
}

// Universal is an ingredient-independent factor.
type Universal float64

// FactorFor always yields the universal value.
func (u Universal) FactorFor(string) (float64, bool) { return float64(u), true }

func (Universal) factor() {}

// PerIngredient maps ingredient names to density-dependent factors.
type PerIngredient map[string]float64

// FactorFor yields the factor registered for ingredient, if any.
func (p PerIngredient) FactorFor(ingredient string) (float64, bool) {
	if ingredient == "" {
		return 0, false
	}
	f, ok := p[ingredient]
	return f, ok
}

func (PerIngredient) factor() {}

// Matches reports whether the rule converts from -> to.
func (r Rule) Matches(from, to string) bool {
	return r.From == from && r.To == to
}

// Conversion is a single conversion request as the caller sent it.
// Units and ingredient keep the caller's casing.
type Conversion struct {
	Amount     float64
	FromUnit   string
	ToUnit     string
	Ingredient string // empty when not supplied
}

// Result is the outcome of a successful conversion.
type Result struct {
	ConvertedValue float64 `json:"converted_value"`
	Unit           string  `json:"unit"`
}
