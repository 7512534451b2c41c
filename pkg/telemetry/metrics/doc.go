// Package metrics provides Prometheus metrics collection for Pressgate.
//
// The Collector orchestrates all metric subsystems and exposes one recording
// method per event the client pipeline produces. Every method is a no-op when
// metrics are disabled, so call sites never guard themselves.
//
// # Metric Groups
//
//   - Request metrics: request counts, duration histograms, retries, and
//     classified errors, labeled by site and method
//   - Cache metrics: hits, misses, evictions, and entry counts per layer
//     (memory, disk), plus scoped invalidation counts
//   - Rate limit metrics: rejections, queue waits, and remaining window
//     budget per site
//   - Auth metrics: authentication attempts by outcome and a per-site
//     session gauge
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRequest("prod", "GET", "success", 120*time.Millisecond)
//
// Exposition is optional: when the configuration carries a listen address,
// the serve command mounts collector.Handler() on it. Metrics are collected
// either way, so tools like wp_request_stats always have data.
//
// # Cardinality
//
// Label values are drawn from the configuration (site ids, HTTP methods) and
// from fixed enums (status, error kind, cache layer), so cardinality stays
// small. A CardinalityLimiter guards the request labels anyway and folds
// overflow into site="other".
package metrics
