package metrics

import (
	"time"

	"presshq/pressgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RateLimitMetrics tracks metrics for the per-site rate limiter.
//
// Metrics:
//   - pressgate_ratelimit_rejected_total: requests rejected at admission
//   - pressgate_ratelimit_queued_total: requests that waited for window reset
//   - pressgate_ratelimit_wait_seconds: time queued requests waited
//   - pressgate_ratelimit_remaining: remaining budget in the current window
type RateLimitMetrics struct {
	rejectedTotal *prometheus.CounterVec
	queuedTotal   *prometheus.CounterVec
	waitSeconds   *prometheus.HistogramVec
	remaining     *prometheus.GaugeVec
}

// NewRateLimitMetrics creates and registers rate limit metrics with the
// provided registry.
func NewRateLimitMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RateLimitMetrics {
	rl := &RateLimitMetrics{
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_rejected_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"site"},
		),

		queuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_queued_total",
				Help:      "Total number of requests that waited for window reset",
			},
			[]string{"site"},
		),

		waitSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_wait_seconds",
				Help:      "Time queued requests waited for admission",
				Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 15.0, 30.0, 60.0},
			},
			[]string{"site"},
		),

		remaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_remaining",
				Help:      "Remaining request budget in the current window",
			},
			[]string{"site"},
		),
	}

	registry.MustRegister(
		rl.rejectedTotal,
		rl.queuedTotal,
		rl.waitSeconds,
		rl.remaining,
	)

	return rl
}

// RecordRejected records a request rejected at admission.
func (rl *RateLimitMetrics) RecordRejected(site string) {
	rl.rejectedTotal.WithLabelValues(site).Inc()
}

// RecordQueued records a request that waited for the window to reset.
func (rl *RateLimitMetrics) RecordQueued(site string) {
	rl.queuedTotal.WithLabelValues(site).Inc()
}

// ObserveWait records how long a queued request waited.
func (rl *RateLimitMetrics) ObserveWait(site string, wait time.Duration) {
	rl.waitSeconds.WithLabelValues(site).Observe(wait.Seconds())
}

// UpdateRemaining updates the remaining budget gauge.
func (rl *RateLimitMetrics) UpdateRemaining(site string, remaining int) {
	rl.remaining.WithLabelValues(site).Set(float64(remaining))
}
