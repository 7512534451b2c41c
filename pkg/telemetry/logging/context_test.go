package logging

import (
	"context"
	"testing"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()

	if got := GetRequestID(ctx); got != "" {
		t.Errorf("expected empty request id on fresh context, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithSite(ctx, "prod")
	ctx = WithTool(ctx, "wp_get_post")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithSpanID(ctx, "span-1")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("expected request id req-1, got %q", got)
	}
	if got := GetSite(ctx); got != "prod" {
		t.Errorf("expected site prod, got %q", got)
	}
	if got := GetTool(ctx); got != "wp_get_post" {
		t.Errorf("expected tool wp_get_post, got %q", got)
	}
	if got := GetTraceID(ctx); got != "trace-1" {
		t.Errorf("expected trace id trace-1, got %q", got)
	}
	if got := GetSpanID(ctx); got != "span-1" {
		t.Errorf("expected span id span-1, got %q", got)
	}
}

func TestExtractContextFields(t *testing.T) {
	ctx := context.Background()

	if fields := extractContextFields(ctx); len(fields) != 0 {
		t.Errorf("expected no fields from empty context, got %v", fields)
	}

	ctx = WithRequestID(ctx, "req-2")
	ctx = WithSite(ctx, "staging")

	fields := extractContextFields(ctx)
	if len(fields) != 4 {
		t.Fatalf("expected 4 field elements, got %d: %v", len(fields), fields)
	}
	if fields[0] != "request_id" || fields[1] != "req-2" {
		t.Errorf("expected request_id pair first, got %v", fields[:2])
	}
	if fields[2] != "site" || fields[3] != "staging" {
		t.Errorf("expected site pair, got %v", fields[2:4])
	}
}
