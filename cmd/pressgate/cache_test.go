package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/telemetry/logging"
)

func TestReadEndpointList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.txt")
	content := `# warm list
wp/v2/posts

wp/v2/pages
  wp/v2/categories
# trailing comment
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	endpoints, err := readEndpointList(path)
	if err != nil {
		t.Fatalf("readEndpointList() error = %v", err)
	}

	want := []string{"wp/v2/posts", "wp/v2/pages", "wp/v2/categories"}
	if len(endpoints) != len(want) {
		t.Fatalf("got %d endpoints, want %d: %v", len(endpoints), len(want), endpoints)
	}
	for i, endpoint := range want {
		if endpoints[i] != endpoint {
			t.Errorf("endpoints[%d] = %q, want %q", i, endpoints[i], endpoint)
		}
	}
}

func TestReadEndpointListMissingFile(t *testing.T) {
	_, err := readEndpointList(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWarmTarget(t *testing.T) {
	cfg := &config.Config{
		Sites: []config.SiteConfig{
			{ID: "blog", BaseURL: "https://blog.example.com"},
			{ID: "shop", BaseURL: "https://shop.example.com"},
		},
	}

	origSite := cacheWarmFlags.site
	defer func() { cacheWarmFlags.site = origSite }()

	// Explicit flag selects the site
	cacheWarmFlags.site = "shop"
	site, err := warmTarget(cfg)
	if err != nil {
		t.Fatalf("warmTarget() error = %v", err)
	}
	if site.ID != "shop" {
		t.Errorf("site.ID = %q, want %q", site.ID, "shop")
	}

	// Unknown site fails
	cacheWarmFlags.site = "wiki"
	if _, err := warmTarget(cfg); err == nil {
		t.Error("expected error for unknown site")
	}

	// Multiple sites without a flag is ambiguous
	cacheWarmFlags.site = ""
	if _, err := warmTarget(cfg); err == nil {
		t.Error("expected error when multiple sites and no --site")
	}

	// A single site is selected implicitly
	cfg.Sites = cfg.Sites[:1]
	site, err = warmTarget(cfg)
	if err != nil {
		t.Fatalf("warmTarget() error = %v", err)
	}
	if site.ID != "blog" {
		t.Errorf("site.ID = %q, want %q", site.ID, "blog")
	}
}

func TestNewCacheManagerMapsConfig(t *testing.T) {
	cfg := &config.Config{
		Cache: config.CacheConfig{
			Enabled:       true,
			MaxEntries:    50,
			SweepInterval: time.Minute,
		},
	}

	mgr := newCacheManager(cfg, logging.Discard().Slog(), nil)
	defer mgr.Close()

	info := mgr.Info(context.Background())
	if !info.Enabled {
		t.Error("cache should be enabled")
	}
	if info.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d, want 50", info.MaxEntries)
	}
	if info.DiskEnabled {
		t.Error("disk layer should be disabled")
	}
}
