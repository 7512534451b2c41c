package cache

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDiskStore(t *testing.T) *DiskStore {
	t.Helper()

	s, err := NewDiskStore(filepath.Join(t.TempDir(), "cache.db"), discardLogger())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDiskStore_SetGet(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	want := newEntry("k1", "prod", "posts", time.Minute)
	if err := s.Set(ctx, want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := s.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got.Value) != string(want.Value) {
		t.Errorf("value = %s, want %s", got.Value, want.Value)
	}
	if got.SiteID != "prod" || got.ResourceType != "posts" {
		t.Errorf("scope = %s/%s, want prod/posts", got.SiteID, got.ResourceType)
	}
	if got.Canonical != want.Canonical {
		t.Errorf("canonical = %q, want %q", got.Canonical, want.Canonical)
	}

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestDiskStore_Replace(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	first := newEntry("k1", "prod", "posts", time.Minute)
	s.Set(ctx, first)

	second := newEntry("k1", "prod", "posts", time.Minute)
	second.Value = []byte(`{"id":2}`)
	if err := s.Set(ctx, second); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	got, ok := s.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got.Value) != `{"id":2}` {
		t.Errorf("value = %s, want replaced value", got.Value)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestDiskStore_ExpiredEntryRemoved(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	entry := newEntry("k1", "prod", "posts", time.Minute)
	entry.ExpiresAt = time.Now().Add(-time.Second)
	s.Set(ctx, entry)

	if _, ok := s.Get(ctx, "k1"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("expired row not deleted, count = %d", n)
	}
	if s.Expired() != 1 {
		t.Errorf("Expired() = %d, want 1", s.Expired())
	}
}

func TestDiskStore_DeleteExpired(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	stale := newEntry("stale", "prod", "posts", time.Minute)
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	s.Set(ctx, stale)
	s.Set(ctx, newEntry("live", "prod", "posts", time.Hour))

	removed, err := s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d, want 1", removed)
	}
	if _, ok := s.Get(ctx, "live"); !ok {
		t.Error("live entry removed")
	}
}

func TestDiskStore_DeleteSiteAndMatching(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	s.Set(ctx, newEntry("p1", "prod", "posts", time.Minute))
	s.Set(ctx, newEntry("p2", "prod", "posts", time.Minute))
	s.Set(ctx, newEntry("g1", "prod", "pages", time.Minute))
	s.Set(ctx, newEntry("s1", "staging", "posts", time.Minute))

	removed, err := s.DeleteMatching(ctx, "prod", "posts")
	if err != nil {
		t.Fatalf("DeleteMatching failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("DeleteMatching removed %d, want 2", removed)
	}

	removed, err = s.DeleteSite(ctx, "prod")
	if err != nil {
		t.Fatalf("DeleteSite failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("DeleteSite removed %d, want 1", removed)
	}

	if _, ok := s.Get(ctx, "s1"); !ok {
		t.Error("other site's entry removed")
	}
}

func TestDiskStore_ClearPattern(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	s.Set(ctx, newEntry("p1", "prod", "posts", time.Minute))
	s.Set(ctx, newEntry("g1", "prod", "pages", time.Minute))

	removed, err := s.Clear(ctx, "wp/v2/posts")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("pattern clear removed %d, want 1", removed)
	}

	removed, _ = s.Clear(ctx, "")
	if removed != 1 {
		t.Errorf("full clear removed %d, want 1", removed)
	}
}

func TestDiskStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := NewDiskStore(path, discardLogger())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	s.Set(ctx, newEntry("k1", "prod", "posts", time.Hour))
	s.Close()

	reopened, err := NewDiskStore(path, discardLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if _, ok := reopened.Get(ctx, "k1"); !ok {
		t.Error("entry did not survive reopen")
	}
}

func TestDiskStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")

	s, err := NewDiskStore(path, discardLogger())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	s.Close()
}
