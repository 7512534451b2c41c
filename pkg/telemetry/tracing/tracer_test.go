package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"presshq/pressgate/pkg/config"
)

func disabledConfig() *config.TracingConfig {
	return &config.TracingConfig{
		Enabled:     false,
		Endpoint:    "localhost:4317",
		SampleRatio: 1.0,
		ServiceName: "pressgate-test",
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	if err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(disabledConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if tracer.Enabled() {
		t.Error("expected tracer to report disabled")
	}

	ctx, span := tracer.Start(context.Background(), "test.operation")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected non-nil context from Start")
	}
	if span.SpanContext().IsValid() {
		t.Error("noop tracer should not produce valid span contexts")
	}
}

func TestTracer_Shutdown_Disabled(t *testing.T) {
	tracer, err := New(disabledConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on disabled tracer returned error: %v", err)
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if id := TraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID without span, got %q", id)
	}
}

func TestSpanID_NoSpan(t *testing.T) {
	if id := SpanID(context.Background()); id != "" {
		t.Errorf("expected empty span ID without span, got %q", id)
	}
}

func TestSetError(t *testing.T) {
	tracer, err := New(disabledConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, span := tracer.Start(context.Background(), "test.error")
	defer span.End()

	// Noop spans accept attributes and recorded errors without panicking.
	SetError(span, errors.New("upstream unreachable"))
	SetError(span, nil)
}

func TestSetStatus(t *testing.T) {
	tracer, err := New(disabledConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, span := tracer.Start(context.Background(), "test.status")
	defer span.End()

	SetStatus(span, errors.New("request failed"))
	SetStatus(span, nil)
}

func TestAttributeSetters(t *testing.T) {
	tracer, err := New(disabledConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, span := tracer.Start(context.Background(), "test.attributes")
	defer span.End()

	SetSite(span, "prod")
	SetMethod(span, "GET")
	SetEndpoint(span, "wp/v2/posts")
	SetRequestID(span, "req-123")
	SetTool(span, "wp_list_posts")
	SetCacheHit(span, true, "memory")
	SetCacheHit(span, false, "")
	SetRetryCount(span, 2)
	SetErrorKind(span, "network")
	SetHTTPStatus(span, 502)
	SetAuthMethod(span, "app-password")
}

func TestRequestAttributes(t *testing.T) {
	attrs := RequestAttributes("prod", "GET", "wp/v2/posts")
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}

	if string(attrs[0].Key) != AttrSite || attrs[0].Value.AsString() != "prod" {
		t.Errorf("unexpected site attribute: %s=%s", attrs[0].Key, attrs[0].Value.AsString())
	}
	if string(attrs[1].Key) != AttrMethod || attrs[1].Value.AsString() != "GET" {
		t.Errorf("unexpected method attribute: %s=%s", attrs[1].Key, attrs[1].Value.AsString())
	}
	if string(attrs[2].Key) != AttrEndpoint || attrs[2].Value.AsString() != "wp/v2/posts" {
		t.Errorf("unexpected endpoint attribute: %s=%s", attrs[2].Key, attrs[2].Value.AsString())
	}
}

func TestInject_WithoutTraceContext(t *testing.T) {
	header := make(http.Header)
	Inject(context.Background(), header)

	// No active span and no configured propagator means nothing to inject.
	if len(header) != 0 && header.Get("traceparent") != "" {
		t.Errorf("expected no traceparent header, got %q", header.Get("traceparent"))
	}
}

func TestExtract_EmptyHeaders(t *testing.T) {
	ctx := Extract(context.Background(), make(http.Header))
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if TraceID(ctx) != "" {
		t.Errorf("expected no trace ID from empty headers, got %q", TraceID(ctx))
	}
}
