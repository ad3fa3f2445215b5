// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/bakeconv/internal/domain/model"
)

// Converter performs a single conversion. Implementations return an error
// wrapping conversion.ErrNoConversion when no rule matches.
type Converter interface {
	Convert(ctx context.Context, c model.Conversion) (model.Result, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Converter
	ReadinessProvider
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	convertHandler *ConvertHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	metricsHandler http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		convertHandler: NewConvertHandler(deps),
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		metricsHandler: NewMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/convert", MetricsMiddleware(RequestLogMiddleware(s.convertHandler.HandleConvert), "convert"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", s.metricsHandler)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the literal client message for err's kind.
func writeError(w http.ResponseWriter, status int, err error) {
	msg, _ := describe(err)
	writeJSON(w, status, errorResponse{Error: msg})
}
