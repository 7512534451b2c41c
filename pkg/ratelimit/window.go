package ratelimit

import (
	"sync"
	"time"
)

// FixedWindow implements the fixed window rate limiting algorithm.
//
// Requests are counted against a window of fixed length anchored at
// the first request after the previous window expired. When the count
// reaches the limit, further requests are rejected until the window
// rolls over.
//
// Fixed windows admit up to 2x the limit across a window boundary in
// the worst case. That is acceptable here: the limit protects a remote
// site from sustained request pressure, not from short bursts.
//
// # Thread Safety
//
// FixedWindow is thread-safe using sync.Mutex for all operations.
type FixedWindow struct {
	maxRequests int
	window      time.Duration
	start       time.Time
	count       int
	mu          sync.Mutex
}

// NewFixedWindow creates a fixed window admitting maxRequests per
// window.
func NewFixedWindow(maxRequests int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		maxRequests: maxRequests,
		window:      window,
		start:       time.Now(),
	}
}

// Take attempts to admit one request. Returns true and consumes a slot
// when the current window has capacity, false otherwise.
func (w *FixedWindow) Take() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rollLocked()

	if w.count >= w.maxRequests {
		return false
	}
	w.count++
	return true
}

// Remaining returns the number of requests left in the current window.
func (w *FixedWindow) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rollLocked()
	return w.maxRequests - w.count
}

// Limit returns the configured per-window maximum.
func (w *FixedWindow) Limit() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxRequests
}

// ResetAt returns when the current window rolls over.
func (w *FixedWindow) ResetAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rollLocked()
	return w.start.Add(w.window)
}

// Reset clears the window. This is useful for testing or manual limit
// resets.
func (w *FixedWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.start = time.Now()
	w.count = 0
}

// rollLocked starts a fresh window if the current one has expired.
// Caller must hold lock.
func (w *FixedWindow) rollLocked() {
	now := time.Now()
	if now.Sub(w.start) >= w.window {
		w.start = now
		w.count = 0
	}
}
