package main

import (
	"strings"
	"testing"

	"presshq/pressgate/pkg/config"
)

func TestSelectSites(t *testing.T) {
	cfg := &config.Config{
		Sites: []config.SiteConfig{
			{ID: "blog"},
			{ID: "shop"},
			{ID: "docs"},
		},
	}

	// No arguments selects everything
	sites, err := selectSites(cfg, nil)
	if err != nil {
		t.Fatalf("selectSites() error = %v", err)
	}
	if len(sites) != 3 {
		t.Errorf("got %d sites, want 3", len(sites))
	}

	// Explicit ids select a subset, in argument order
	sites, err = selectSites(cfg, []string{"docs", "blog"})
	if err != nil {
		t.Fatalf("selectSites() error = %v", err)
	}
	if len(sites) != 2 || sites[0].ID != "docs" || sites[1].ID != "blog" {
		t.Errorf("selectSites() = %v", sites)
	}
}

func TestSelectSitesUnknownID(t *testing.T) {
	cfg := &config.Config{
		Sites: []config.SiteConfig{{ID: "blog"}},
	}

	_, err := selectSites(cfg, []string{"wiki"})
	if err == nil {
		t.Fatal("expected error for unknown site id")
	}
	if !strings.Contains(err.Error(), "wiki") {
		t.Errorf("error should name the unknown site: %v", err)
	}
	if !strings.Contains(err.Error(), "blog") {
		t.Errorf("error should list configured sites: %v", err)
	}
}
