package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore implements the in-memory cache layer with TTL expiry and
// LRU eviction. When the store reaches max capacity, it evicts the
// least recently accessed entry. A background sweep removes expired
// entries so they do not linger between reads.
type MemoryStore struct {
	// entries maps cache keys to entries
	entries map[string]*Entry

	// maxEntries is the maximum number of entries (0 = unlimited)
	maxEntries int

	// mu protects concurrent access to the store
	mu sync.RWMutex

	// stopCh signals the sweep goroutine to stop
	stopCh chan struct{}

	// sweepInterval is how often to remove expired entries
	sweepInterval time.Duration

	evictions atomic.Int64
	expired   atomic.Int64

	// onEvict runs after each LRU eviction, outside the lock.
	onEvict func()

	closeOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a memory store with the given capacity.
// If maxEntries is 0, the store has unlimited size. A positive
// sweepInterval starts a background goroutine removing expired
// entries; stop it with Close.
func NewMemoryStore(maxEntries int, sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:       make(map[string]*Entry),
		maxEntries:    maxEntries,
		stopCh:        make(chan struct{}),
		sweepInterval: sweepInterval,
	}

	if sweepInterval > 0 {
		go s.sweepLoop()
	}

	return s
}

// SetEvictionHook registers fn to run after each LRU eviction.
func (s *MemoryStore) SetEvictionHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

// Get retrieves an entry. Expired entries are removed and reported as
// a miss.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool) {
	now := time.Now()

	s.mu.RLock()
	entry, ok := s.entries[key]
	if !ok {
		s.mu.RUnlock()
		return nil, false
	}

	if entry.Expired(now) {
		s.mu.RUnlock()
		s.mu.Lock()
		// Re-check under the write lock; the sweeper may have won.
		if e, ok := s.entries[key]; ok && e.Expired(time.Now()) {
			delete(s.entries, key)
			s.expired.Add(1)
		}
		s.mu.Unlock()
		return nil, false
	}
	// Copy under the read lock; the stored entry's access time mutates
	// on every hit and must not race with callers holding the result.
	snapshot := *entry
	s.mu.RUnlock()

	// Update access time with write lock for LRU ordering.
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.LastAccessedAt = now
	}
	s.mu.Unlock()

	return &snapshot, true
}

// Set inserts or replaces an entry, evicting the least recently used
// entry when the store is full.
func (s *MemoryStore) Set(_ context.Context, entry *Entry) error {
	s.mu.Lock()

	evicted := false
	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		if _, exists := s.entries[entry.Key]; !exists {
			s.evictLRU()
			evicted = true
		}
	}

	if entry.LastAccessedAt.IsZero() {
		entry.LastAccessedAt = entry.CreatedAt
	}
	s.entries[entry.Key] = entry
	hook := s.onEvict
	s.mu.Unlock()

	if evicted && hook != nil {
		hook()
	}
	return nil
}

// Delete removes one entry.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// DeleteSite removes every entry for the site.
func (s *MemoryStore) DeleteSite(_ context.Context, siteID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.SiteID == siteID {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// DeleteMatching removes every entry matching both site and resource
// type.
func (s *MemoryStore) DeleteMatching(_ context.Context, siteID, resourceType string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.SiteID == siteID && entry.ResourceType == resourceType {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// DeleteExpired removes every expired entry.
func (s *MemoryStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.expired.Add(int64(removed))
	return removed, nil
}

// Clear removes entries whose canonical description contains pattern;
// an empty pattern removes everything.
func (s *MemoryStore) Clear(_ context.Context, pattern string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pattern == "" {
		removed := len(s.entries)
		s.entries = make(map[string]*Entry)
		return removed, nil
	}

	removed := 0
	for key, entry := range s.entries {
		if strings.Contains(entry.Canonical, pattern) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Count returns the current number of entries.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries), nil
}

// Evictions returns the cumulative LRU eviction count.
func (s *MemoryStore) Evictions() int64 {
	return s.evictions.Load()
}

// Expired returns the cumulative count of entries removed because
// their TTL passed.
func (s *MemoryStore) Expired() int64 {
	return s.expired.Load()
}

// Close stops the background sweep goroutine. After calling Close, the
// store should not be used.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})
	return nil
}

// evictLRU evicts the least recently accessed entry.
// Must be called with write lock held.
func (s *MemoryStore) evictLRU() {
	if len(s.entries) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time

	for key, entry := range s.entries {
		if oldestKey == "" || entry.LastAccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccessedAt
		}
	}

	if oldestKey != "" {
		delete(s.entries, oldestKey)
		s.evictions.Add(1)
	}
}

// sweepLoop runs periodically to remove expired entries.
// Runs in a background goroutine until Close() is called.
func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.DeleteExpired(context.Background())
		case <-s.stopCh:
			return
		}
	}
}
