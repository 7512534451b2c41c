package metrics

import (
	"fmt"
	"sync"
	"time"

	"presshq/pressgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in Pressgate.
// It manages metric registration and provides a unified interface for
// recording metrics across the client, cache, rate limiter, and auth
// components.
//
// All recording methods are no-ops when metrics are disabled, so callers
// never need to guard their call sites.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Request metrics
	requestMetrics *RequestMetrics

	// Cache metrics
	cacheMetrics *CacheMetrics

	// Rate limit metrics
	rateLimitMetrics *RateLimitMetrics

	// Auth metrics
	authMetrics *AuthMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "pressgate",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "pressgate"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		// Sites and methods are config-bounded, but endpoints flow into
		// some label sets; cap them to keep scrapes cheap.
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)
	c.rateLimitMetrics = NewRateLimitMetrics(cfg, registry)
	c.authMetrics = NewAuthMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed request.
//
// Parameters:
//   - site: site identifier
//   - method: HTTP method ("GET", "POST", ...)
//   - status: request outcome ("success", "error", "cache_hit", "rejected")
//   - duration: total request duration
func (c *Collector) RecordRequest(site, method, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("request:%s:%s:%s", site, method, status)
	if !c.cardinalityLimiter.Allow(labelSet) {
		site = "other"
	}

	c.requestMetrics.RecordRequest(site, method, status, duration)
}

// RecordError records a classified request error.
//
// Parameters:
//   - site: site identifier
//   - kind: error classification ("network", "authentication", "rate_limit",
//     "validation", "server", "unknown")
func (c *Collector) RecordError(site, kind string) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordError(site, kind)
}

// RecordRetry records a retry attempt for a request.
func (c *Collector) RecordRetry(site, method string) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRetry(site, method)
}

// RecordResponseSize records the size of a response body in bytes.
func (c *Collector) RecordResponseSize(site string, sizeBytes int) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordResponseSize(site, sizeBytes)
}

// RecordCacheHit records a cache hit in the given layer ("memory", "disk").
func (c *Collector) RecordCacheHit(layer string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordHit(layer)
}

// RecordCacheMiss records a cache miss in the given layer.
func (c *Collector) RecordCacheMiss(layer string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordMiss(layer)
}

// RecordCacheEviction records an entry evicted from the given layer.
func (c *Collector) RecordCacheEviction(layer string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordEviction(layer)
}

// RecordCacheInvalidation records entries removed by a scoped invalidation.
func (c *Collector) RecordCacheInvalidation(resourceType string, count int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordInvalidation(resourceType, count)
}

// UpdateCacheEntries updates the current entry count of a cache layer.
func (c *Collector) UpdateCacheEntries(layer string, entries int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.UpdateEntries(layer, entries)
}

// RecordRateLimitRejected records a request rejected by the rate limiter.
func (c *Collector) RecordRateLimitRejected(site string) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.RecordRejected(site)
}

// RecordRateLimitQueued records a request that waited for window reset.
func (c *Collector) RecordRateLimitQueued(site string) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.RecordQueued(site)
}

// ObserveRateLimitWait records how long a queued request waited for
// admission.
func (c *Collector) ObserveRateLimitWait(site string, wait time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.ObserveWait(site, wait)
}

// UpdateRateLimitRemaining updates the remaining request budget in the
// current window.
func (c *Collector) UpdateRateLimitRemaining(site string, remaining int) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.UpdateRemaining(site, remaining)
}

// RecordAuthRefresh records an authentication attempt.
//
// Parameters:
//   - site: site identifier
//   - outcome: "success", "rejected", or "error"
func (c *Collector) RecordAuthRefresh(site, outcome string) {
	if !c.config.Enabled {
		return
	}

	c.authMetrics.RecordRefresh(site, outcome)
}

// UpdateAuthSession updates the session gauge for a site (1 authenticated,
// 0 not).
func (c *Collector) UpdateAuthSession(site string, authenticated bool) {
	if !c.config.Enabled {
		return
	}

	c.authMetrics.UpdateSession(site, authenticated)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
