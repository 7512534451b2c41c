// Package tracing provides distributed tracing for request flows using
// OpenTelemetry.
//
// # Overview
//
// The package wraps the OpenTelemetry SDK behind a small Tracer type
// configured from config.TracingConfig. Spans are exported over OTLP
// gRPC to a collector endpoint (Jaeger, Tempo, or any OTLP-compatible
// backend).
//
// # Usage
//
// Create a tracer at startup and shut it down on exit:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// Wrap operations in spans:
//
//	ctx, span := tracer.Start(ctx, "client.request")
//	defer span.End()
//
//	tracing.SetSite(span, "prod")
//	tracing.SetEndpoint(span, "wp/v2/posts")
//
// # Disabled Mode
//
// When tracing is disabled in the configuration, New returns a tracer
// backed by a noop provider. Span creation still works and costs almost
// nothing, so callers never need to branch on whether tracing is on.
//
// # Sampling
//
// Root spans are sampled at the configured sample_ratio. Child spans
// follow their parent's sampling decision so traces stay whole.
//
// # Propagation
//
// The global propagator is set to the W3C Trace Context and Baggage
// composite. Inject adds trace headers to outbound requests so that
// upstream systems can participate in the same trace.
package tracing
