package client

import (
	"sync"
	"time"
)

// RequestStats is a running summary of every call made through a site
// client, cache hits included.
type RequestStats struct {
	TotalRequests       int64         `json:"total_requests"`
	SuccessfulRequests  int64         `json:"successful_requests"`
	FailedRequests      int64         `json:"failed_requests"`
	AverageResponseTime time.Duration `json:"average_response_time"`
}

// statsTracker accumulates RequestStats under a mutex. The average is a
// cumulative moving average, so the tracker holds no per-request
// samples.
type statsTracker struct {
	mu    sync.Mutex
	stats RequestStats
}

func (t *statsTracker) record(ok bool, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalRequests++
	if ok {
		t.stats.SuccessfulRequests++
	} else {
		t.stats.FailedRequests++
	}
	t.stats.AverageResponseTime += (elapsed - t.stats.AverageResponseTime) / time.Duration(t.stats.TotalRequests)
}

func (t *statsTracker) snapshot() RequestStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *statsTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = RequestStats{}
}
