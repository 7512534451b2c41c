package metrics

import (
	"presshq/pressgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics tracks metrics for site authentication sessions.
//
// Metrics:
//   - pressgate_auth_refresh_total: authentication attempts by site, outcome
//   - pressgate_auth_session: session gauge (1 authenticated, 0 not)
type AuthMetrics struct {
	refreshTotal *prometheus.CounterVec
	session      *prometheus.GaugeVec
}

// NewAuthMetrics creates and registers auth metrics with the provided
// registry.
func NewAuthMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuthMetrics {
	am := &AuthMetrics{
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "auth_refresh_total",
				Help:      "Total number of authentication attempts",
			},
			[]string{"site", "outcome"},
		),

		session: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "auth_session",
				Help:      "Whether the site session is authenticated (1) or not (0)",
			},
			[]string{"site"},
		),
	}

	registry.MustRegister(
		am.refreshTotal,
		am.session,
	)

	return am
}

// RecordRefresh records an authentication attempt.
func (am *AuthMetrics) RecordRefresh(site, outcome string) {
	am.refreshTotal.WithLabelValues(site, outcome).Inc()
}

// UpdateSession updates the session gauge for a site.
func (am *AuthMetrics) UpdateSession(site string, authenticated bool) {
	v := 0.0
	if authenticated {
		v = 1.0
	}
	am.session.WithLabelValues(site).Set(v)
}
