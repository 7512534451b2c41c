package metrics

import (
	"time"

	"presshq/pressgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for WordPress REST requests.
//
// Metrics:
//   - pressgate_requests_total: total request count by site, method, status
//   - pressgate_request_duration_seconds: request duration histogram
//   - pressgate_request_retries_total: retry attempts by site and method
//   - pressgate_request_errors_total: classified errors by site and kind
//   - pressgate_response_size_bytes: response body size histogram
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	responseSize    *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided
// registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of WordPress REST requests processed",
			},
			[]string{"site", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of WordPress REST requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"site", "method"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_retries_total",
				Help:      "Total number of request retry attempts",
			},
			[]string{"site", "method"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_errors_total",
				Help:      "Total number of classified request errors",
			},
			[]string{"site", "kind"},
		),

		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "response_size_bytes",
				Help:      "Size of response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10), // 256B to 64MB
			},
			[]string{"site"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.retriesTotal,
		rm.errorsTotal,
		rm.responseSize,
	)

	return rm
}

// RecordRequest records metrics for a completed request.
func (rm *RequestMetrics) RecordRequest(site, method, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(site, method, status).Inc()
	rm.requestDuration.WithLabelValues(site, method).Observe(duration.Seconds())
}

// RecordRetry records a single retry attempt.
func (rm *RequestMetrics) RecordRetry(site, method string) {
	rm.retriesTotal.WithLabelValues(site, method).Inc()
}

// RecordError records a classified error.
func (rm *RequestMetrics) RecordError(site, kind string) {
	rm.errorsTotal.WithLabelValues(site, kind).Inc()
}

// RecordResponseSize records the size of a response body.
func (rm *RequestMetrics) RecordResponseSize(site string, sizeBytes int) {
	if sizeBytes > 0 {
		rm.responseSize.WithLabelValues(site).Observe(float64(sizeBytes))
	}
}
