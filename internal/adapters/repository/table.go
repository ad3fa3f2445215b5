// Package repository loads the read-only conversion table.
package repository

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/okian/bakeconv/internal/domain/model"
	"github.com/okian/bakeconv/pkg/logger"
	"github.com/okian/bakeconv/pkg/metrics"
)

// defaultTableName is the embedded table shipped with the binary.
const defaultTableName = "data/conversions.json"

//go:embed data/conversions.json
var embeddedFS embed.FS

// Table is the ordered, immutable conversion table.
type Table struct {
	rules  []model.Rule
	source string
}

// Load reads, validates, and decodes a conversion table. Without options the
// embedded table is used.
func Load(ctx context.Context, opts ...Option) (*Table, error) {
	o := loadOptions{fsys: embeddedFS, name: defaultTableName}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	data, err := fs.ReadFile(o.fsys, o.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadTable, o.name, err)
	}

	rules, err := Decode(data, formatOf(o.name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.name, err)
	}

	elapsed := time.Since(start)
	metrics.UpdateTableRules(len(rules))
	metrics.RecordTableLoadDuration(float64(elapsed.Microseconds()) / 1000)

	if o.logger != nil {
		o.logger.Info(ctx, "conversion table loaded",
			logger.String("source", o.name),
			logger.Int("rules", len(rules)),
			logger.String("took", elapsed.String()),
		)
	}

	return &Table{rules: rules, source: o.name}, nil
}

// Rules returns a copy of the rules in table order.
func (t *Table) Rules() []model.Rule {
	cp := make([]model.Rule, len(t.rules))
	copy(cp, t.rules)
	return cp
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// Source names where the table was loaded from.
func (t *Table) Source() string {
	return t.source
}

// Format identifies a table encoding.
type Format int

// Supported table encodings.
const (
	FormatJSON Format = iota
	FormatYAML
)

func formatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// tableDocument is the on-disk shape of a conversion table.
type tableDocument struct {
	Rules []ruleDocument `json:"bakingConversions" yaml:"bakingConversions"`
}

type ruleDocument struct {
	From              string             `json:"from" yaml:"from"`
	To                string             `json:"to" yaml:"to"`
	ConversionFactor  *float64           `json:"conversionFactor,omitempty" yaml:"conversionFactor,omitempty"`
	ConversionFactors map[string]float64 `json:"conversionFactors,omitempty" yaml:"conversionFactors,omitempty"`
}

// Decode parses and validates table data. Unknown fields are rejected.
func Decode(data []byte, format Format) ([]model.Rule, error) {
	var doc tableDocument
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
		}
	}

	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidTable)
	}

	rules := make([]model.Rule, 0, len(doc.Rules))
	for i, rd := range doc.Rules {
		if err := rd.validate(); err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s -> %s): %w", ErrInvalidTable, i, rd.From, rd.To, err)
		}
		rules = append(rules, rd.rule())
	}
	return rules, nil
}

func (d ruleDocument) validate() error {
	switch {
	case d.ConversionFactor != nil && d.ConversionFactors != nil:
		return errors.New("conversionFactor and conversionFactors are mutually exclusive")
	case d.ConversionFactor == nil && len(d.ConversionFactors) == 0:
		return errors.New("one of conversionFactor or conversionFactors is required")
	}
	return validation.ValidateStruct(&d,
		validation.Field(&d.From, validation.Required, validation.By(lowercase)),
		validation.Field(&d.To, validation.Required, validation.By(lowercase)),
		validation.Field(&d.ConversionFactor, validation.By(positiveFactor)),
		validation.Field(&d.ConversionFactors, validation.By(ingredientFactors)),
	)
}

// rule converts a validated document into its tagged form.
func (d ruleDocument) rule() model.Rule {
	r := model.Rule{From: d.From, To: d.To}
	if d.ConversionFactor != nil {
		r.Factor = model.Universal(*d.ConversionFactor)
		return r
	}
	factors := make(model.PerIngredient, len(d.ConversionFactors))
	for ing, f := range d.ConversionFactors {
		factors[ing] = f
	}
	r.Factor = factors
	return r
}

func lowercase(value interface{}) error {
	s, _ := value.(string)
	if s != strings.ToLower(s) {
		return validation.NewError("validation_not_lowercase", "must be lowercase")
	}
	return nil
}

func positiveFactor(value interface{}) error {
	var f float64
	switch v := value.(type) {
	case *float64:
		if v == nil {
			return nil
		}
		f = *v
	case float64:
		f = v
	default:
		return validation.NewError("validation_invalid_type", "must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return validation.NewError("validation_not_positive", "must be a finite number greater than zero")
	}
	return nil
}

func ingredientFactors(value interface{}) error {
	m, _ := value.(map[string]float64)
	for ing, f := range m {
		if strings.TrimSpace(ing) == "" {
			return validation.NewError("validation_empty_ingredient", "ingredient names must not be empty")
		}
		if err := lowercase(ing); err != nil {
			return validation.NewError("validation_not_lowercase", fmt.Sprintf("ingredient %q must be lowercase", ing))
		}
		if err := positiveFactor(f); err != nil {
			return validation.NewError("validation_not_positive", fmt.Sprintf("factor for %q must be a finite number greater than zero", ing))
		}
	}
	return nil
}

// osFS opens paths relative to the working directory.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}
