package metrics

import (
	"presshq/pressgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks metrics for the response cache.
//
// Metrics:
//   - pressgate_cache_hits_total: cache hits by layer ("memory", "disk")
//   - pressgate_cache_misses_total: cache misses by layer
//   - pressgate_cache_evictions_total: evictions by layer
//   - pressgate_cache_invalidations_total: scoped invalidations by resource type
//   - pressgate_cache_entries: current entry count by layer
type CacheMetrics struct {
	hitsTotal          *prometheus.CounterVec
	missesTotal        *prometheus.CounterVec
	evictionsTotal     *prometheus.CounterVec
	invalidationsTotal *prometheus.CounterVec
	entries            *prometheus.GaugeVec
}

// NewCacheMetrics creates and registers cache metrics with the provided
// registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"layer"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"layer"},
		),

		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_evictions_total",
				Help:      "Total number of cache entries evicted",
			},
			[]string{"layer"},
		),

		invalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_invalidations_total",
				Help:      "Total number of cache entries removed by scoped invalidation",
			},
			[]string{"resource_type"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_entries",
				Help:      "Current number of cache entries",
			},
			[]string{"layer"},
		),
	}

	registry.MustRegister(
		cm.hitsTotal,
		cm.missesTotal,
		cm.evictionsTotal,
		cm.invalidationsTotal,
		cm.entries,
	)

	return cm
}

// RecordHit records a cache hit.
func (cm *CacheMetrics) RecordHit(layer string) {
	cm.hitsTotal.WithLabelValues(layer).Inc()
}

// RecordMiss records a cache miss.
func (cm *CacheMetrics) RecordMiss(layer string) {
	cm.missesTotal.WithLabelValues(layer).Inc()
}

// RecordEviction records an evicted entry.
func (cm *CacheMetrics) RecordEviction(layer string) {
	cm.evictionsTotal.WithLabelValues(layer).Inc()
}

// RecordInvalidation records entries removed by a scoped invalidation.
func (cm *CacheMetrics) RecordInvalidation(resourceType string, count int) {
	if count > 0 {
		cm.invalidationsTotal.WithLabelValues(resourceType).Add(float64(count))
	}
}

// UpdateEntries updates the current entry count for a layer.
func (cm *CacheMetrics) UpdateEntries(layer string, entries int) {
	cm.entries.WithLabelValues(layer).Set(float64(entries))
}
