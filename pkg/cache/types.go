package cache

import (
	"context"
	"time"
)

// Cache layers. The manager reads memory first and falls back to disk,
// promoting disk hits into memory.
const (
	LayerMemory = "memory"
	LayerDisk   = "disk"
)

// Entry is one cached response.
type Entry struct {
	// Key is the hashed cache key.
	Key string

	// Canonical is the human-readable request description the key was
	// hashed from. Pattern-based clearing matches against it.
	Canonical string

	// Value is the raw response body.
	Value []byte

	// SiteID scopes the entry to the site that created it. Lookups and
	// invalidation never cross sites.
	SiteID string

	// ResourceType scopes invalidation after writes.
	ResourceType string

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time

	// ExpiresAt is when the entry stops being served.
	ExpiresAt time.Time

	// LastAccessedAt orders LRU eviction in the memory layer.
	LastAccessedAt time.Time
}

// Expired reports whether the entry is past its TTL.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store is one cache layer.
type Store interface {
	// Get returns the entry if present and not expired. Expired
	// entries are removed and reported as a miss.
	Get(ctx context.Context, key string) (*Entry, bool)

	// Set inserts or replaces an entry.
	Set(ctx context.Context, entry *Entry) error

	// Delete removes one entry.
	Delete(ctx context.Context, key string) error

	// DeleteSite removes every entry for the site. Returns the number
	// removed.
	DeleteSite(ctx context.Context, siteID string) (int, error)

	// DeleteMatching removes every entry matching both site and
	// resource type. Returns the number removed.
	DeleteMatching(ctx context.Context, siteID, resourceType string) (int, error)

	// DeleteExpired removes every expired entry. Returns the number
	// removed.
	DeleteExpired(ctx context.Context) (int, error)

	// Clear removes entries whose canonical description contains
	// pattern; an empty pattern removes everything. Returns the number
	// removed.
	Clear(ctx context.Context, pattern string) (int, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases the layer's resources.
	Close() error
}

// Config contains configuration for the cache manager.
type Config struct {
	// Enabled turns caching on. When false every lookup misses and
	// writes are dropped.
	Enabled bool

	// MaxEntries bounds the memory layer; the least recently accessed
	// entry is evicted at capacity. Zero means unlimited.
	MaxEntries int

	// SweepInterval is how often the memory layer removes expired
	// entries in the background. Zero disables the sweep.
	SweepInterval time.Duration

	// Disk configures the optional persistent layer.
	Disk DiskConfig
}

// DiskConfig configures the SQLite-backed disk layer.
type DiskConfig struct {
	// Enabled turns the disk layer on.
	Enabled bool

	// Path is the database file path.
	Path string

	// PruneSchedule is a cron expression scheduling expired-entry
	// pruning. Empty disables scheduled pruning.
	PruneSchedule string
}

// Stats reports cumulative cache performance counters.
type Stats struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Entries       int     `json:"entries"`
	Evictions     int64   `json:"evictions"`
	Expired       int64   `json:"expired"`
	HitRate       float64 `json:"hit_rate"`
	MemoryEntries int     `json:"memory_entries"`
	DiskEntries   int     `json:"disk_entries"`
}

// Info echoes the manager's configuration and current entry counts.
type Info struct {
	Enabled       bool   `json:"enabled"`
	MaxEntries    int    `json:"max_entries"`
	SweepInterval string `json:"sweep_interval"`
	DiskEnabled   bool   `json:"disk_enabled"`
	DiskPath      string `json:"disk_path,omitempty"`
	PruneSchedule string `json:"prune_schedule,omitempty"`
	MemoryEntries int    `json:"memory_entries"`
	DiskEntries   int    `json:"disk_entries"`
}
