// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	repository "github.com/okian/bakeconv/internal/adapters/repository"
	"github.com/okian/bakeconv/internal/domain/conversion"
	"github.com/okian/bakeconv/internal/domain/model"
	"github.com/okian/bakeconv/pkg/logger"
	"github.com/okian/bakeconv/pkg/metrics"
)

// Service converts baking quantities using the loaded conversion table.
type Service struct {
	mu sync.RWMutex

	// Core components
	table    *repository.Table
	resolver conversion.Resolver

	// Configuration
	tableOpts []repository.Option

	// State
	started   bool
	converted atomic.Int64
	failed    atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTablePath loads the conversion table from a file instead of the
// embedded default.
func WithTablePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.tableOpts = append(s.tableOpts, repository.WithPath(path))
		}
	}
}

// WithTableFS loads the conversion table from name inside fsys.
func WithTableFS(fsys fs.FS, name string) Option {
	return func(s *Service) {
		s.tableOpts = append(s.tableOpts, repository.WithFS(fsys, name))
	}
}

// New constructs a new Service. The table is loaded by Start.
func New(opts ...Option) *Service {
	s := &Service{}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the conversion table and builds the resolver. A table that
// fails to load or validate is returned as an error and the service stays
// stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting conversion service...")

	opts := append([]repository.Option{repository.WithLogger(s.logger)}, s.tableOpts...)
	table, err := repository.Load(ctx, opts...)
	if err != nil {
		return fmt.Errorf("start conversion service: %w", err)
	}

	s.table = table
	s.resolver = conversion.NewTableResolver(table.Rules())
	s.started = true

	s.logger.Info(ctx, "conversion service started",
		logger.String("table", table.Source()),
		logger.Int("rules", table.Len()),
	)
	return nil
}

// Stop marks the service as stopped. Subsequent conversions fail with
// ErrNotStarted until Start is called again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.resolver = nil
	s.logger.Info(context.Background(), "conversion service stopped")
}

// Ready reports whether the table is loaded and conversions can be served.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Rules returns the number of rules in the loaded table, or 0 before Start.
func (s *Service) Rules() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return 0
	}
	return s.table.Len()
}

// Convert lowercases the units and ingredient, resolves the factor and
// multiplies. The result echoes ToUnit exactly as the caller sent it.
// Returns conversion.ErrNoConversion when no rule yields a factor and
// conversion.ErrOutOfRange when the product is not a finite float64.
func (s *Service) Convert(ctx context.Context, c model.Conversion) (model.Result, error) {
	s.mu.RLock()
	resolver := s.resolver
	s.mu.RUnlock()

	if resolver == nil {
		return model.Result{}, ErrNotStarted
	}

	from := strings.ToLower(c.FromUnit)
	to := strings.ToLower(c.ToUnit)
	ingredient := strings.ToLower(c.Ingredient)

	factor, ok := resolver.Resolve(from, to, ingredient)
	if !ok {
		s.failed.Add(1)
		metrics.RecordConversion(metrics.OutcomeNoConversion)
		s.logger.Debug(ctx, "no conversion found",
			logger.String("from", from),
			logger.String("to", to),
			logger.String("ingredient", ingredient),
		)
		return model.Result{}, fmt.Errorf("%s -> %s: %w", from, to, conversion.ErrNoConversion)
	}

	value := c.Amount * factor
	if math.IsInf(value, 0) || math.IsNaN(value) {
		s.failed.Add(1)
		metrics.RecordConversion(metrics.OutcomeOutOfRange)
		return model.Result{}, fmt.Errorf("%v %s -> %s: %w", c.Amount, from, to, conversion.ErrOutOfRange)
	}

	s.converted.Add(1)
	metrics.RecordConversion(metrics.OutcomeConverted)

	return model.Result{
		ConvertedValue: value,
		Unit:           c.ToUnit,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"converted":   s.converted.Load(),
		"unconverted": s.failed.Load(),
	}

	if s.table != nil {
		stats["rules"] = s.table.Len()
		stats["tableSource"] = s.table.Source()
	}

	return stats
}
