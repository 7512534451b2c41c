package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces per-site request limits.
//
// Each site gets its own fixed window so a chatty site cannot starve
// the others sharing the process. Sites use the default limit from
// Config unless an override is registered via SetSiteLimit.
//
// When a window is exhausted the limiter either rejects immediately or
// queues the caller until the window resets, per Config.OnExhausted.
type Limiter struct {
	config    Config
	windows   map[string]*FixedWindow
	overrides map[string]SiteLimit
	mu        sync.Mutex
}

// NewLimiter creates a new rate limiter with the given configuration.
//
// Only positive limits are enforced. A zero MaxRequests or a disabled
// config means every check passes.
func NewLimiter(config Config) *Limiter {
	return &Limiter{
		config:    config,
		windows:   make(map[string]*FixedWindow),
		overrides: make(map[string]SiteLimit),
	}
}

// SetSiteLimit overrides the default limit for one site. Any existing
// window for the site is discarded so the new limit takes effect
// immediately.
func (l *Limiter) SetSiteLimit(siteID string, limit SiteLimit) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.overrides[siteID] = limit
	delete(l.windows, siteID)
}

// Check attempts to admit one request for the site. The admission
// check and the count increment happen atomically, so concurrent
// callers never over-admit.
func (l *Limiter) Check(siteID string) *CheckResult {
	w, ok := l.windowFor(siteID)
	if !ok {
		return &CheckResult{Allowed: true}
	}

	if w.Take() {
		return &CheckResult{
			Allowed:   true,
			Limit:     w.Limit(),
			Remaining: w.Remaining(),
			Reset:     w.ResetAt(),
		}
	}

	reset := w.ResetAt()
	return &CheckResult{
		Allowed:    false,
		Limit:      w.Limit(),
		Remaining:  0,
		Reset:      reset,
		RetryAfter: time.Until(reset),
	}
}

// Status reports the site's current window without consuming a slot.
func (l *Limiter) Status(siteID string) *CheckResult {
	w, ok := l.windowFor(siteID)
	if !ok {
		return &CheckResult{Allowed: true}
	}

	remaining := w.Remaining()
	reset := w.ResetAt()
	result := &CheckResult{
		Allowed:   remaining > 0,
		Limit:     w.Limit(),
		Remaining: remaining,
		Reset:     reset,
	}
	if !result.Allowed {
		result.RetryAfter = time.Until(reset)
	}
	return result
}

// Acquire admits one request for the site, applying the configured
// exhaustion policy.
//
// In reject mode (and on success) Acquire returns immediately; callers
// inspect CheckResult.Allowed. In queue mode an exhausted window makes
// Acquire wait for the window reset, bounded by Config.MaxQueueWait
// and the context. A wait that cannot succeed within the bound returns
// the rejection without waiting it out.
//
// The only error Acquire returns is the context's, when the caller is
// cancelled while queued.
func (l *Limiter) Acquire(ctx context.Context, siteID string) (*CheckResult, error) {
	result := l.Check(siteID)
	if result.Allowed || l.config.OnExhausted != OnExhaustedQueue {
		return result, nil
	}

	deadline := time.Now().Add(l.config.MaxQueueWait)
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		// Waiting less than the window remainder cannot admit, so a
		// reset beyond the queue budget is a rejection now.
		if result.Reset.After(deadline) {
			return result, nil
		}

		wait := time.Until(result.Reset)
		if wait < time.Millisecond {
			wait = time.Millisecond
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-timer.C:
		}

		result = l.Check(siteID)
		if result.Allowed {
			return result, nil
		}
		// Other queued callers drained the fresh window first; keep
		// waiting while the budget lasts.
	}
}

// Reset clears every site's window. This is primarily for testing.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, w := range l.windows {
		w.Reset()
	}
}

// windowFor returns the site's window, creating it on first use.
// The second return is false when rate limiting does not apply to the
// site.
func (l *Limiter) windowFor(siteID string) (*FixedWindow, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w, ok := l.windows[siteID]; ok {
		return w, true
	}

	maxRequests := l.config.MaxRequests
	window := l.config.Window
	if override, ok := l.overrides[siteID]; ok {
		if override.MaxRequests > 0 {
			maxRequests = override.MaxRequests
		}
		if override.Window > 0 {
			window = override.Window
		}
	}

	if !l.config.Enabled || maxRequests <= 0 || window <= 0 {
		return nil, false
	}

	w := NewFixedWindow(maxRequests, window)
	l.windows[siteID] = w
	return w, true
}
