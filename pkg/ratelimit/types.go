package ratelimit

import "time"

// Exhaustion policies. When a site's window is full, the limiter
// either rejects the request immediately or queues it until the
// window resets.
const (
	OnExhaustedReject = "reject"
	OnExhaustedQueue  = "queue"
)

// Config contains the default rate limit applied to every site.
// Individual sites may override the limit via SetSiteLimit.
type Config struct {
	// Enabled turns rate limiting on. When false every check passes.
	Enabled bool

	// MaxRequests is the number of requests admitted per window.
	// Zero means no limit.
	MaxRequests int

	// Window is the fixed window length.
	Window time.Duration

	// OnExhausted selects the exhaustion policy: OnExhaustedReject or
	// OnExhaustedQueue.
	OnExhausted string

	// MaxQueueWait bounds how long a queued request waits for a window
	// reset before giving up.
	MaxQueueWait time.Duration
}

// SiteLimit overrides the default limit for a single site.
type SiteLimit struct {
	// MaxRequests is the number of requests admitted per window.
	MaxRequests int

	// Window is the fixed window length.
	Window time.Duration
}

// CheckResult contains the result of a rate limit check.
type CheckResult struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Limit is the configured limit value.
	Limit int

	// Remaining is how many requests remain in the current window.
	Remaining int

	// Reset is when the current window resets.
	Reset time.Time

	// RetryAfter suggests how long to wait before retrying
	// (zero when allowed).
	RetryAfter time.Duration
}
