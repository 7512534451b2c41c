// Package ratelimit provides per-site request rate limiting.
//
// # Overview
//
// The ratelimit package keeps one fixed window per site so every site
// is limited independently:
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    Enabled:     true,
//	    MaxRequests: 60,
//	    Window:      time.Minute,
//	    OnExhausted: ratelimit.OnExhaustedReject,
//	})
//
//	result := limiter.Check("prod")
//	if !result.Allowed {
//	    // Rate limit exceeded; retry after result.RetryAfter
//	}
//
// # Fixed Window Algorithm
//
// Requests count against a window of fixed length that starts with the
// first request after the previous window expired. The count and the
// admission decision are atomic, so the limit holds under concurrency.
//
// # Exhaustion Policy
//
// An exhausted window either rejects callers immediately or queues
// them until the window resets:
//
//	result, err := limiter.Acquire(ctx, "prod")
//	if err != nil {
//	    // Context cancelled while queued
//	}
//	if !result.Allowed {
//	    // Rejected, or the queue wait would exceed MaxQueueWait
//	}
//
// # Per-Site Overrides
//
// Sites with their own limits register them once at construction time:
//
//	limiter.SetSiteLimit("staging", ratelimit.SiteLimit{
//	    MaxRequests: 10,
//	    Window:      time.Minute,
//	})
//
// # Thread Safety
//
// The limiter and its windows are thread-safe; each window uses its
// own lock to keep cross-site contention low.
package ratelimit
