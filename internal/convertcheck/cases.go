package convertcheck

import (
	"fmt"
	"net/http"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Literal error messages returned by the service.
const (
	MsgInvalidAmount = "Invalid or missing amount."
	MsgMissingUnits  = "Both from_unit and to_unit are required."
	MsgNoConversion  = "Invalid conversion parameters or missing conversion factor for the given ingredient."
)

func float(v float64) *float64 { return &v }

// DefaultCases returns the reference scenarios. They hold for the table
// embedded in the server.
func DefaultCases() []Case {
	return []Case{
		{
			Name: "cups of flour to grams", Amount: "2", FromUnit: "cups", ToUnit: "grams", Ingredient: "flour",
			Expect: Expectation{Status: http.StatusOK, ConvertedValue: float(240), Unit: "grams"},
		},
		{
			Name: "tbsp to tsp", Amount: "1", FromUnit: "tbsp", ToUnit: "tsp",
			Expect: Expectation{Status: http.StatusOK, ConvertedValue: float(3), Unit: "tsp"},
		},
		{
			Name: "negative amount", Amount: "-5", FromUnit: "cups", ToUnit: "grams",
			Expect: Expectation{Status: http.StatusBadRequest, Error: MsgInvalidAmount},
		},
		{
			Name: "missing to_unit", Amount: "1", FromUnit: "cups",
			Expect: Expectation{Status: http.StatusBadRequest, Error: MsgMissingUnits},
		},
		{
			Name: "unknown ingredient", Amount: "1", FromUnit: "cups", ToUnit: "grams", Ingredient: "unknown_ingredient",
			Expect: Expectation{Status: http.StatusBadRequest, Error: MsgNoConversion},
		},
		{
			Name: "unit casing is echoed", Amount: "1", FromUnit: "TBSP", ToUnit: "Tsp",
			Expect: Expectation{Status: http.StatusOK, ConvertedValue: float(3), Unit: "Tsp"},
		},
	}
}

// LoadCases reads cases from a YAML file shaped as {cases: [...]}.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCases, err)
	}

	var doc struct {
		Cases []Case `yaml:"cases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCases, path, err)
	}
	if len(doc.Cases) == 0 {
		return nil, fmt.Errorf("%w: %s: no cases", ErrLoadCases, path)
	}

	for i := range doc.Cases {
		c := &doc.Cases[i]
		if err := validation.ValidateStruct(c,
			validation.Field(&c.Name, validation.Required),
			validation.Field(&c.Expect, validation.By(validExpectation)),
		); err != nil {
			return nil, fmt.Errorf("%w: case %d: %w", ErrLoadCases, i, err)
		}
	}
	return doc.Cases, nil
}

func validExpectation(value interface{}) error {
	e, _ := value.(Expectation)
	return validation.ValidateStruct(&e,
		validation.Field(&e.Status, validation.Required, validation.In(http.StatusOK, http.StatusBadRequest)),
		validation.Field(&e.ConvertedValue, validation.When(e.Status == http.StatusOK, validation.NotNil)),
		validation.Field(&e.Unit, validation.When(e.Status == http.StatusOK, validation.Required)),
		validation.Field(&e.Error, validation.When(e.Status == http.StatusBadRequest, validation.Required)),
	)
}
