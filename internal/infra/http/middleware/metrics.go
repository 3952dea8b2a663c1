package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
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

	recordsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_records_ingested_total",
			Help: "Total number of visitor records ingested from the pixel feed",
		},
	)

	enrichmentsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_enrichments_total",
			Help: "Total number of enrichment attempts by outcome",
		},
		[]string{"outcome"},
	)

	channelPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_channel_pushes_total",
			Help: "Total number of records pushed to a sync channel",
		},
		[]string{"channel", "outcome"},
	)

	jobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_job_runs_total",
			Help: "Total number of scheduled job runs by result",
		},
		[]string{"job", "result"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
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

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordIngestion(count int) {
	recordsIngested.Add(float64(count))
}

func RecordEnrichments(outcome string, count int) {
	enrichmentsCompleted.WithLabelValues(outcome).Add(float64(count))
}

func RecordChannelPushes(channel, outcome string, count int) {
	channelPushes.WithLabelValues(channel, outcome).Add(float64(count))
}

func RecordJobRun(job, result string) {
	jobRuns.WithLabelValues(job, result).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
