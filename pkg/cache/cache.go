package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"presshq/pressgate/pkg/telemetry/metrics"
)

// Manager layers the memory and disk stores behind one cache API.
//
// Reads check memory first and fall back to disk, promoting disk hits
// into memory so repeated reads stay fast. Writes and invalidations
// apply to both layers. A disk layer that fails to open degrades the
// manager to memory-only with a warning rather than failing startup.
//
// Site isolation is structural: every entry carries the SiteID that
// created it and lookups are keyed by site, so one site's cached
// responses are never served to another.
type Manager struct {
	config  Config
	memory  *MemoryStore
	disk    *DiskStore
	pruner  *Pruner
	logger  *slog.Logger
	metrics *metrics.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// NewManager creates the cache manager. A nil collector disables
// metric recording.
func NewManager(cfg Config, logger *slog.Logger, collector *metrics.Collector) *Manager {
	m := &Manager{
		config:  cfg,
		logger:  logger,
		metrics: collector,
	}

	if !cfg.Enabled {
		return m
	}

	m.memory = NewMemoryStore(cfg.MaxEntries, cfg.SweepInterval)
	if collector != nil {
		m.memory.SetEvictionHook(func() {
			collector.RecordCacheEviction(LayerMemory)
		})
	}

	if cfg.Disk.Enabled {
		disk, err := NewDiskStore(cfg.Disk.Path, logger)
		if err != nil {
			logger.Warn("disk cache unavailable, continuing memory-only",
				"path", cfg.Disk.Path,
				"error", err,
			)
		} else {
			m.disk = disk
			m.pruner = NewPruner(disk, cfg.Disk.PruneSchedule, logger)
		}
	}

	return m
}

// Start begins background maintenance (the scheduled disk prune).
func (m *Manager) Start(ctx context.Context) error {
	if m.pruner == nil {
		return nil
	}
	return m.pruner.Start(ctx)
}

// Get returns the cached value for the key and the layer that served
// it.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, string, bool) {
	if m.memory == nil {
		return nil, "", false
	}

	if entry, ok := m.memory.Get(ctx, key); ok {
		m.hits.Add(1)
		m.recordHit(LayerMemory)
		return entry.Value, LayerMemory, true
	}
	m.recordMiss(LayerMemory)

	if m.disk != nil {
		if entry, ok := m.disk.Get(ctx, key); ok {
			// Promote with the remaining TTL so the entry does not
			// outlive its original expiry.
			if err := m.memory.Set(ctx, entry); err == nil {
				m.hits.Add(1)
				m.recordHit(LayerDisk)
				return entry.Value, LayerDisk, true
			}
		}
		m.recordMiss(LayerDisk)
	}

	m.misses.Add(1)
	return nil, "", false
}

// Set stores a value in both layers with the given TTL.
func (m *Manager) Set(ctx context.Context, entry *Entry, ttl time.Duration) {
	if m.memory == nil || ttl <= 0 {
		return
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(ttl)
	entry.LastAccessedAt = now

	if err := m.memory.Set(ctx, entry); err == nil {
		m.updateEntriesGauge(ctx, LayerMemory)
	}

	if m.disk != nil {
		if err := m.disk.Set(ctx, entry); err != nil {
			m.logger.Warn("disk cache write failed", "error", err)
		}
	}
}

// Invalidate removes every entry matching the site and resource type
// in both layers. Returns the number removed.
func (m *Manager) Invalidate(ctx context.Context, siteID, resourceType string) int {
	if m.memory == nil {
		return 0
	}

	removed, _ := m.memory.DeleteMatching(ctx, siteID, resourceType)
	if m.disk != nil {
		n, err := m.disk.DeleteMatching(ctx, siteID, resourceType)
		if err != nil {
			m.logger.Warn("disk cache invalidation failed", "error", err)
		}
		removed += n
	}

	if m.metrics != nil {
		m.metrics.RecordCacheInvalidation(resourceType, removed)
	}
	m.updateEntriesGauge(ctx, LayerMemory)
	m.updateEntriesGauge(ctx, LayerDisk)
	return removed
}

// InvalidateSite removes every entry for the site in both layers.
// Returns the number removed.
func (m *Manager) InvalidateSite(ctx context.Context, siteID string) int {
	if m.memory == nil {
		return 0
	}

	removed, _ := m.memory.DeleteSite(ctx, siteID)
	if m.disk != nil {
		n, err := m.disk.DeleteSite(ctx, siteID)
		if err != nil {
			m.logger.Warn("disk cache invalidation failed", "error", err)
		}
		removed += n
	}

	m.updateEntriesGauge(ctx, LayerMemory)
	m.updateEntriesGauge(ctx, LayerDisk)
	return removed
}

// Clear removes entries whose canonical description contains pattern
// from both layers; an empty pattern removes everything. Returns the
// number removed.
func (m *Manager) Clear(ctx context.Context, pattern string) int {
	if m.memory == nil {
		return 0
	}

	removed, _ := m.memory.Clear(ctx, pattern)
	if m.disk != nil {
		n, err := m.disk.Clear(ctx, pattern)
		if err != nil {
			m.logger.Warn("disk cache clear failed", "error", err)
		}
		removed += n
	}

	m.updateEntriesGauge(ctx, LayerMemory)
	m.updateEntriesGauge(ctx, LayerDisk)
	return removed
}

// Stats reports cumulative cache counters across both layers.
func (m *Manager) Stats(ctx context.Context) Stats {
	stats := Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	if m.memory != nil {
		stats.MemoryEntries, _ = m.memory.Count(ctx)
		stats.Evictions = m.memory.Evictions()
		stats.Expired = m.memory.Expired()
	}
	if m.disk != nil {
		n, err := m.disk.Count(ctx)
		if err == nil {
			stats.DiskEntries = n
		}
		stats.Expired += m.disk.Expired()
	}
	stats.Entries = stats.MemoryEntries + stats.DiskEntries

	m.updateEntriesGauge(ctx, LayerMemory)
	m.updateEntriesGauge(ctx, LayerDisk)
	return stats
}

// Info echoes the manager's configuration and current entry counts.
func (m *Manager) Info(ctx context.Context) Info {
	info := Info{
		Enabled:       m.config.Enabled,
		MaxEntries:    m.config.MaxEntries,
		SweepInterval: m.config.SweepInterval.String(),
		DiskEnabled:   m.disk != nil,
	}

	if m.disk != nil {
		info.DiskPath = m.config.Disk.Path
		info.PruneSchedule = m.config.Disk.PruneSchedule
		info.DiskEntries, _ = m.disk.Count(ctx)
	}
	if m.memory != nil {
		info.MemoryEntries, _ = m.memory.Count(ctx)
	}

	return info
}

// Close stops background maintenance and releases both layers.
func (m *Manager) Close() error {
	if m.pruner != nil {
		m.pruner.Stop()
	}

	var err error
	if m.memory != nil {
		m.memory.Close()
	}
	if m.disk != nil {
		err = m.disk.Close()
	}
	return err
}

func (m *Manager) recordHit(layer string) {
	if m.metrics != nil {
		m.metrics.RecordCacheHit(layer)
	}
}

func (m *Manager) recordMiss(layer string) {
	if m.metrics != nil {
		m.metrics.RecordCacheMiss(layer)
	}
}

func (m *Manager) updateEntriesGauge(ctx context.Context, layer string) {
	if m.metrics == nil {
		return
	}

	switch layer {
	case LayerMemory:
		if m.memory != nil {
			if n, err := m.memory.Count(ctx); err == nil {
				m.metrics.UpdateCacheEntries(LayerMemory, n)
			}
		}
	case LayerDisk:
		if m.disk != nil {
			if n, err := m.disk.Count(ctx); err == nil {
				m.metrics.UpdateCacheEntries(LayerDisk, n)
			}
		}
	}
}
