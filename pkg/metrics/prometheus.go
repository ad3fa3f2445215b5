// Package metrics provides Prometheus metrics for the bakeconv service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion outcomes.
const (
	OutcomeConverted    = "converted"
	OutcomeNoConversion = "no_conversion"
	OutcomeOutOfRange   = "out_of_range"
)

// Manager manages all Prometheus metrics for the bakeconv service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Conversion metrics
	conversions      *prometheus.CounterVec
	conversionErrors *prometheus.CounterVec

	// Table metrics
	tableRules        prometheus.Gauge
	tableLoadDuration prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bakeconv",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.conversions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "conversions_total",
		Help:        "Total number of resolved conversion requests by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.conversionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "conversion_errors_total",
		Help:        "Total number of rejected conversion requests by error kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.tableRules = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "table_rules",
		Help:        "Number of rules in the loaded conversion table",
		ConstLabels: labels,
	})

	m.tableLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "table_load_duration_milliseconds",
		Help:        "Time spent loading the conversion table in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Current heap allocation in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})
}

// RecordConversion counts a resolved conversion request by outcome.
func (m *Manager) RecordConversion(outcome string) {
	m.conversions.WithLabelValues(outcome).Inc()
}

// RecordConversionError counts a rejected conversion request by kind.
func (m *Manager) RecordConversionError(kind string) {
	m.conversionErrors.WithLabelValues(kind).Inc()
}

// UpdateTableRules sets the loaded rule count.
func (m *Manager) UpdateTableRules(count int) {
	m.tableRules.Set(float64(count))
}

// RecordTableLoadDuration records how long loading the table took.
func (m *Manager) RecordTableLoadDuration(durationMs float64) {
	m.tableLoadDuration.Observe(durationMs)
}

// RecordHTTPRequest counts an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	m.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	m.systemGoroutineCount.Set(float64(count))
}

// Global convenience functions.

// RecordConversion counts a resolved conversion request on the global manager.
func RecordConversion(outcome string) { globalManager.RecordConversion(outcome) }

// RecordConversionError counts a rejected conversion request on the global manager.
func RecordConversionError(kind string) { globalManager.RecordConversionError(kind) }

// UpdateTableRules sets the loaded rule count on the global manager.
func UpdateTableRules(count int) { globalManager.UpdateTableRules(count) }

// RecordTableLoadDuration records table load time on the global manager.
func RecordTableLoadDuration(durationMs float64) { globalManager.RecordTableLoadDuration(durationMs) }

// RecordHTTPRequest counts an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration on the global manager.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

// UpdateSystemMemoryUsage sets heap allocation on the global manager.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the goroutine count on the global manager.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Value returns the current value of a counter or gauge family in g,
// summed across label sets matching labels.
func Value(g prometheus.Gatherer, name string, labels map[string]string) (float64, error) {
	families, err := g.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather: %w", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, metric := range mf.GetMetric() {
			if !labelsMatch(metric.GetLabel(), labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				sum += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				sum += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				sum += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		return sum, nil
	}
	return 0, fmt.Errorf("%s: %w", name, ErrMetricNotFound)
}

func labelsMatch[L interface {
	GetName() string
	GetValue() string
}](have []L, want map[string]string) bool {
	for k, v := range want {
		found := false
		for _, lp := range have {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
