package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

const (
	ConversionSent   = "sent"
	ConversionFailed = "failed"
	ConversionQueued = "queued"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	reconciliationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_runs_total",
			Help: "Total number of reconciliation runs by final status",
		},
		[]string{"status"},
	)

	reconciliationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconciliation_duration_seconds",
			Help:    "Duration of a full reconciliation run in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	leadsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_classified_total",
			Help: "Total number of leads classified, by final status",
		},
		[]string{"status"},
	)

	conversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversions_total",
			Help: "Conversion notifications by result",
		},
		[]string{"result"},
	)

	extractionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_errors_total",
			Help: "Total number of extraction errors by source",
		},
		[]string{"source"},
	)

	persistenceWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_writes_total",
			Help: "Dataset writes by tab and the path that stored them",
		},
		[]string{"tab", "path"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão do chi (/reconciliations/{id}) para não explodir a cardinalidade.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func RecordRun(status string, d time.Duration) {
	reconciliationRuns.WithLabelValues(status).Inc()
	reconciliationDuration.Observe(d.Seconds())
}

func RecordSummary(s entity.Summary) {
	leadsClassified.WithLabelValues(string(entity.StatusNewSale)).Add(float64(s.NewSales))
	leadsClassified.WithLabelValues(string(entity.StatusExistingCustomer)).Add(float64(s.ExistingCustomer))
	leadsClassified.WithLabelValues(string(entity.StatusNotFound)).Add(float64(s.NotFound))
}

func RecordConversion(result string) {
	conversions.WithLabelValues(result).Inc()
}

func RecordExtractionError(source string) {
	extractionErrors.WithLabelValues(source).Inc()
}

func RecordPersistence(tab, path string) {
	persistenceWrites.WithLabelValues(tab, path).Inc()
}
