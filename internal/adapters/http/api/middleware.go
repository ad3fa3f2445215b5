package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bakeconv/pkg/logger"
	"github.com/okian/bakeconv/pkg/metrics"
)

// HeaderRequestID carries the request identifier in both directions.
const HeaderRequestID = "X-Request-ID"

// HTTP status code constants.
const (
	statusBadRequest    = 400
	statusNotFound      = 404
	statusInternalError = 500
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)
	}
}

type loggerKey struct{}

// RequestLogMiddleware assigns a request ID, exposes a request-scoped logger
// through the context, and logs one line per request.
func RequestLogMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		l := logger.Named("http")
		ctx := context.WithValue(r.Context(), loggerKey{}, requestLogger{Logger: l, id: id})
		r = r.WithContext(ctx)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		l.Info(ctx, "request served",
			logger.String("request_id", id),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("query", r.URL.RawQuery),
			logger.Int("status", wrapped.statusCode),
			logger.String("error_class", errorClass(wrapped.statusCode)),
			logger.String("took", time.Since(start).String()),
		)
	}
}

// loggerFrom returns the request-scoped logger, or nil outside
// RequestLogMiddleware.
func loggerFrom(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(requestLogger); ok {
		return l
	}
	return nil
}

// requestLogger tags every entry with the request ID.
type requestLogger struct {
	logger.Logger
	id string
}

func (l requestLogger) Debug(ctx context.Context, msg string, fields ...logger.Field) {
	l.Logger.Debug(ctx, msg, append(fields, logger.String("request_id", l.id))...)
}

// errorClass returns a standardized error class based on HTTP status code.
func errorClass(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "none"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
