package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used in spans across the codebase.
const (
	// AttrSite is the site identifier the request targets.
	AttrSite = "pressgate.site"

	// AttrMethod is the HTTP method of the request.
	AttrMethod = "pressgate.method"

	// AttrEndpoint is the REST API endpoint path.
	AttrEndpoint = "pressgate.endpoint"

	// AttrRequestID is the unique request identifier.
	AttrRequestID = "pressgate.request_id"

	// AttrTool is the tool name when the request originates from a tool call.
	AttrTool = "pressgate.tool"

	// AttrCacheHit records whether the response was served from cache.
	AttrCacheHit = "pressgate.cache.hit"

	// AttrCacheLayer is the cache layer that served the response.
	AttrCacheLayer = "pressgate.cache.layer"

	// AttrRetryCount is the number of retries performed for the request.
	AttrRetryCount = "pressgate.retry_count"

	// AttrErrorKind is the classified error kind for a failed request.
	AttrErrorKind = "pressgate.error.kind"

	// AttrHTTPStatus is the HTTP status code of the upstream response.
	AttrHTTPStatus = "pressgate.http.status"

	// AttrAuthMethod is the authentication method used for the site.
	AttrAuthMethod = "pressgate.auth.method"
)

// SetSite sets the site attribute on a span.
func SetSite(span trace.Span, site string) {
	span.SetAttributes(attribute.String(AttrSite, site))
}

// SetMethod sets the HTTP method attribute on a span.
func SetMethod(span trace.Span, method string) {
	span.SetAttributes(attribute.String(AttrMethod, method))
}

// SetEndpoint sets the endpoint attribute on a span.
func SetEndpoint(span trace.Span, endpoint string) {
	span.SetAttributes(attribute.String(AttrEndpoint, endpoint))
}

// SetRequestID sets the request ID attribute on a span.
func SetRequestID(span trace.Span, requestID string) {
	span.SetAttributes(attribute.String(AttrRequestID, requestID))
}

// SetTool sets the tool name attribute on a span.
func SetTool(span trace.Span, tool string) {
	span.SetAttributes(attribute.String(AttrTool, tool))
}

// SetCacheHit records a cache lookup outcome on a span. The layer is
// only recorded on hits.
func SetCacheHit(span trace.Span, hit bool, layer string) {
	span.SetAttributes(attribute.Bool(AttrCacheHit, hit))
	if hit && layer != "" {
		span.SetAttributes(attribute.String(AttrCacheLayer, layer))
	}
}

// SetRetryCount sets the retry count attribute on a span.
func SetRetryCount(span trace.Span, count int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, count))
}

// SetErrorKind sets the classified error kind attribute on a span.
func SetErrorKind(span trace.Span, kind string) {
	span.SetAttributes(attribute.String(AttrErrorKind, kind))
}

// SetHTTPStatus sets the HTTP status code attribute on a span.
func SetHTTPStatus(span trace.Span, status int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
}

// SetAuthMethod sets the authentication method attribute on a span.
func SetAuthMethod(span trace.Span, method string) {
	span.SetAttributes(attribute.String(AttrAuthMethod, method))
}

// RequestAttributes builds the standard attribute set for an outbound
// request span.
func RequestAttributes(site, method, endpoint string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSite, site),
		attribute.String(AttrMethod, method),
		attribute.String(AttrEndpoint, endpoint),
	}
}
