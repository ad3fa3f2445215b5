package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/okian/bakeconv/internal/domain/conversion"
	"github.com/okian/bakeconv/internal/domain/model"
	"github.com/okian/bakeconv/pkg/logger"
	"github.com/okian/bakeconv/pkg/metrics"
)

// Query parameter names for GET /convert.
const (
	paramAmount     = "amount"
	paramFromUnit   = "from_unit"
	paramToUnit     = "to_unit"
	paramIngredient = "ingredient"
)

// ConvertHandler handles conversion requests.
type ConvertHandler struct {
	deps Converter
}

// NewConvertHandler creates a new convert handler.
func NewConvertHandler(deps Converter) *ConvertHandler {
	return &ConvertHandler{deps: deps}
}

// HandleConvert handles GET /convert?amount=&from_unit=&to_unit=&ingredient=.
func (h *ConvertHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	req, err := parseConvertQuery(r.URL.Query())
	if err != nil {
		h.reject(w, r, err)
		return
	}

	res, err := h.deps.Convert(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, conversion.ErrNoConversion):
		h.reject(w, r, fmt.Errorf("%w: %w", ErrNoConversion, err))
	case errors.Is(err, conversion.ErrOutOfRange):
		h.reject(w, r, fmt.Errorf("%w: %w", ErrInvalidAmount, err))
	default:
		// The service is the only source of other errors and is not
		// serving yet.
		h.reject(w, r, fmt.Errorf("%w: %w", ErrNotReady, err))
	}
}

func (h *ConvertHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	_, kind := describe(err)
	metrics.RecordConversionError(kind)
	if l := loggerFrom(r.Context()); l != nil {
		l.Debug(r.Context(), "conversion rejected", logger.String("kind", kind), logger.Error(err))
	}
	status := http.StatusBadRequest
	if errors.Is(err, ErrNotReady) {
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err)
}

// parseConvertQuery extracts and validates the conversion parameters.
// Amount is checked before units.
func parseConvertQuery(q url.Values) (model.Conversion, error) {
	amount, err := parseAmount(q.Get(paramAmount))
	if err != nil {
		return model.Conversion{}, err
	}

	c := model.Conversion{
		Amount:     amount,
		FromUnit:   q.Get(paramFromUnit),
		ToUnit:     q.Get(paramToUnit),
		Ingredient: q.Get(paramIngredient),
	}
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.FromUnit, validation.Required),
		validation.Field(&c.ToUnit, validation.Required),
	); err != nil {
		return model.Conversion{}, fmt.Errorf("%w: %w", ErrMissingUnits, err)
	}
	return c, nil
}

// parseAmount accepts finite decimal numbers greater than zero.
func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	// ParseFloat also takes hex mantissas and digit separators.
	if strings.ContainsAny(raw, "xX_") {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, raw)
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if err := validation.Validate(amount,
		validation.By(finite),
		// Min skips zero values.
		validation.Required,
		validation.Min(0.0).Exclusive(),
	); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return amount, nil
}

func finite(value interface{}) error {
	f, _ := value.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return validation.NewError("validation_not_finite", "must be a finite number")
	}
	return nil
}
