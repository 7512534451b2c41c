// Package client implements the resilient WordPress site client: one
// Client per site, layering request validation, response caching,
// admission control, lazy authentication, retries with exponential
// backoff, and typed error classification over a pooled HTTP
// transport.
//
// # Request Pipeline
//
// Every call runs the same stages in order:
//
//  1. Validation. Malformed requests fail immediately and are never
//     retried.
//  2. Cache lookup. A GET answered from the cache performs no network
//     activity at all and consumes no rate limit budget.
//  3. Admission control. The shared limiter either admits the request,
//     queues it until the window resets, or rejects it.
//  4. Authentication. The first request through a client establishes
//     the session; later requests reuse it.
//  5. The HTTP exchange. Transient failures (network errors, 5xx, 429)
//     retry with exponential backoff and jitter, honoring Retry-After.
//     A 401 or 403 on an established session triggers exactly one
//     re-authentication and replay.
//  6. Cache write-back. Successful GETs are stored with a TTL chosen by
//     resource class; successful writes invalidate the resource's
//     cached entries for the site.
//
// # Errors
//
// Every failure comes back as one of the typed errors in this package:
// NetworkError, AuthenticationError, RateLimitError, ValidationError,
// ServerError or UnknownError. KindOf and IsRetryable inspect wrapped
// errors, so callers can branch without unwrapping by hand:
//
//	posts, err := site.Get(ctx, wordpress.Posts(), nil)
//	if err != nil {
//		var rle *client.RateLimitError
//		if errors.As(err, &rle) {
//			wait(rle.RetryAfter)
//		}
//	}
//
// # Sharing
//
// The cache, limiter, metrics collector and tracer are shared across
// clients; each client scopes its activity by site ID. A Client is
// safe for concurrent use.
package client
