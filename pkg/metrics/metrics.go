// Package metrics holds the Prometheus collectors for record walks and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/mcapidx/pkg/mcap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds all Prometheus metrics for scans and the API. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// Walk metrics
	recordsTotal   *prometheus.CounterVec
	bodyBytesTotal *prometheus.CounterVec
	scansTotal     *prometheus.CounterVec
	scanDuration   prometheus.Histogram

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec
}

// NewMetrics creates all metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcapidx_records_total",
				Help: "Total number of records walked",
			},
			[]string{"opcode"},
		),

		bodyBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcapidx_record_body_bytes_total",
				Help: "Total number of record body bytes walked",
			},
			[]string{"opcode"},
		),

		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcapidx_scans_total",
				Help: "Total number of file scans",
			},
			[]string{"status", "terminator"},
		),

		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mcapidx_scan_duration_seconds",
				Help:    "File scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcapidx_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcapidx_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mcapidx_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),
	}
}

// RecordWalked records one record descriptor produced by a walk
func (m *Metrics) RecordWalked(rec mcap.Record) {
	if m == nil {
		return
	}
	kind := rec.Op.Kind()
	m.recordsTotal.WithLabelValues(kind).Inc()
	m.bodyBytesTotal.WithLabelValues(kind).Add(float64(rec.BodyLen))
}

// RecordScan records a finished scan
func (m *Metrics) RecordScan(success bool, terminator mcap.Terminator, duration time.Duration) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	m.scansTotal.WithLabelValues(status, terminator.String()).Inc()
	m.scanDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
