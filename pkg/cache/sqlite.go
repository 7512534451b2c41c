package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	canonical TEXT NOT NULL,
	site_id TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	value BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_site ON cache_entries(site_id);
CREATE INDEX IF NOT EXISTS idx_cache_site_resource ON cache_entries(site_id, resource_type);
CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);
`

// DiskStore implements the persistent cache layer using SQLite.
// Entries survive process restarts, letting a fresh process serve
// cached reads without refilling from the network first.
type DiskStore struct {
	db      *sql.DB
	path    string
	logger  *slog.Logger
	expired atomic.Int64
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore opens (or creates) the cache database at path and
// initializes the schema. The parent directory is created when
// missing.
func NewDiskStore(path string, logger *slog.Logger) (*DiskStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	s := &DiskStore{
		db:     db,
		path:   path,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("disk cache initialized", "path", path)
	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *DiskStore) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable wal: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(createCacheTable); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get retrieves an entry. Expired rows are deleted and reported as a
// miss.
func (s *DiskStore) Get(ctx context.Context, key string) (*Entry, bool) {
	var entry Entry
	var createdAt, expiresAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT key, canonical, site_id, resource_type, value, created_at, expires_at
		 FROM cache_entries WHERE key = ?`,
		key,
	).Scan(&entry.Key, &entry.Canonical, &entry.SiteID, &entry.ResourceType, &entry.Value, &createdAt, &expiresAt)

	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Warn("disk cache read failed", "error", err)
		}
		return nil, false
	}

	entry.CreatedAt = time.Unix(createdAt, 0)
	entry.ExpiresAt = time.Unix(expiresAt, 0)

	if entry.Expired(time.Now()) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err == nil {
			s.expired.Add(1)
		}
		return nil, false
	}

	return &entry, true
}

// Set inserts or replaces an entry.
func (s *DiskStore) Set(ctx context.Context, entry *Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (key, canonical, site_id, resource_type, value, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Key, entry.Canonical, entry.SiteID, entry.ResourceType, entry.Value,
		entry.CreatedAt.Unix(), entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// DeleteSite removes every entry for the site.
func (s *DiskStore) DeleteSite(ctx context.Context, siteID string) (int, error) {
	return s.exec(ctx, `DELETE FROM cache_entries WHERE site_id = ?`, siteID)
}

// DeleteMatching removes every entry matching both site and resource
// type.
func (s *DiskStore) DeleteMatching(ctx context.Context, siteID, resourceType string) (int, error) {
	return s.exec(ctx, `DELETE FROM cache_entries WHERE site_id = ? AND resource_type = ?`, siteID, resourceType)
}

// DeleteExpired removes every expired entry.
func (s *DiskStore) DeleteExpired(ctx context.Context) (int, error) {
	n, err := s.exec(ctx, `DELETE FROM cache_entries WHERE expires_at < ?`, time.Now().Unix())
	if err == nil {
		s.expired.Add(int64(n))
	}
	return n, err
}

// Clear removes entries whose canonical description contains pattern;
// an empty pattern removes everything.
func (s *DiskStore) Clear(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return s.exec(ctx, `DELETE FROM cache_entries`)
	}
	return s.exec(ctx, `DELETE FROM cache_entries WHERE canonical LIKE ?`, "%"+pattern+"%")
}

// Count returns the number of stored entries.
func (s *DiskStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return count, nil
}

// Expired returns the cumulative count of entries removed because
// their TTL passed.
func (s *DiskStore) Expired() int64 {
	return s.expired.Load()
}

// Close releases the database connection.
func (s *DiskStore) Close() error {
	return s.db.Close()
}

func (s *DiskStore) exec(ctx context.Context, query string, args ...any) (int, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cache exec: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache exec: %w", err)
	}
	return int(affected), nil
}
