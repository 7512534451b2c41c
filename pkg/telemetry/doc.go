// Package telemetry groups the observability subpackages used across
// Pressgate. There is no composite initializer: serve builds each
// subsystem from its own configuration section and hands it to the
// components that need it.
//
// # Subpackages
//
//   - logging: slog-based structured logging with credential redaction
//   - metrics: Prometheus collectors for requests, cache, rate limits,
//     and authentication
//   - tracing: OpenTelemetry span export over OTLP/gRPC
//   - health: liveness, readiness, and version endpoints
//
// # Wiring
//
//	logger, err := logging.New(cfg.Telemetry.Logging)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//
// The site clients take all three through sitefactory.Deps and emit
// through them on every request. Metrics and probes share one HTTP
// listener; the MCP transport on stdio is never touched by telemetry
// output, which is why the logger writes to stderr.
package telemetry
