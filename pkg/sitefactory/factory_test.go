package sitefactory

import (
	"strings"
	"testing"
	"time"

	"presshq/pressgate/pkg/client"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/telemetry/logging"
)

func testSite(id, baseURL string) config.SiteConfig {
	return config.SiteConfig{
		ID:      id,
		BaseURL: baseURL,
		Auth: config.AuthConfig{
			Method: "api-key",
			APIKey: "test-key",
		},
		Timeout: 5 * time.Second,
	}
}

func testDeps() Deps {
	return Deps{Logger: logging.Discard()}
}

func TestDepsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Name = "pressgate"
	cfg.Server.MaxResponseBytes = 1 << 20
	cfg.Retry.BaseDelay = 250 * time.Millisecond
	cfg.Retry.MaxDelay = 10 * time.Second
	cfg.Retry.Jitter = 0.5
	cfg.Cache.DefaultTTL = time.Minute
	cfg.Cache.SemiStaticTTL = 10 * time.Minute
	cfg.Cache.StaticTTL = time.Hour

	deps := DepsFromConfig(cfg)

	want := client.RetryPolicy{BaseDelay: 250 * time.Millisecond, MaxDelay: 10 * time.Second, Jitter: 0.5}
	if deps.Retry != want {
		t.Errorf("Retry = %+v, want %+v", deps.Retry, want)
	}

	wantTTL := client.TTLPolicy{Dynamic: time.Minute, SemiStatic: 10 * time.Minute, Static: time.Hour}
	if deps.TTL != wantTTL {
		t.Errorf("TTL = %+v, want %+v", deps.TTL, wantTTL)
	}

	if deps.MaxResponseBytes != 1<<20 {
		t.Errorf("MaxResponseBytes = %d, want %d", deps.MaxResponseBytes, 1<<20)
	}

	if deps.UserAgent != "pressgate" {
		t.Errorf("UserAgent = %q, want %q", deps.UserAgent, "pressgate")
	}
}

func TestNew_BuildsClient(t *testing.T) {
	site := testSite("blog", "https://blog.example.com/")
	site.Name = "Company Blog"

	c, err := New(site, testDeps())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer c.Close()

	profile := c.Profile()
	if profile.ID != "blog" {
		t.Errorf("ID = %q, want %q", profile.ID, "blog")
	}
	if profile.Name != "Company Blog" {
		t.Errorf("Name = %q, want %q", profile.Name, "Company Blog")
	}
	if profile.BaseURL != "https://blog.example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", profile.BaseURL)
	}
	if got := c.AuthStatus().Method; string(got) != "api-key" {
		t.Errorf("auth method = %q, want %q", got, "api-key")
	}
}

func TestNew_InvalidCredentials(t *testing.T) {
	site := testSite("blog", "https://blog.example.com")
	site.Auth.APIKey = ""

	_, err := New(site, testDeps())
	if err == nil {
		t.Fatal("New() with empty api key should fail")
	}
	if !strings.Contains(err.Error(), `"blog"`) {
		t.Errorf("error should name the site, got %v", err)
	}
}

func TestProfileFor_MapsOverrides(t *testing.T) {
	site := testSite("blog", "https://blog.example.com")
	site.MaxRetries = 5
	site.CacheTTL = 45 * time.Second
	site.RateLimit = &config.SiteRateLimit{MaxRequests: 10, Window: time.Second}

	profile := profileFor(site)

	if profile.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", profile.MaxRetries)
	}
	if profile.CacheTTL != 45*time.Second {
		t.Errorf("CacheTTL = %v, want 45s", profile.CacheTTL)
	}
	if profile.RateLimit == nil {
		t.Fatal("RateLimit override not mapped")
	}
	if profile.RateLimit.MaxRequests != 10 || profile.RateLimit.Window != time.Second {
		t.Errorf("RateLimit = %+v, want 10/1s", profile.RateLimit)
	}
}

func TestProfileFor_NoRateLimitOverride(t *testing.T) {
	profile := profileFor(testSite("blog", "https://blog.example.com"))
	if profile.RateLimit != nil {
		t.Errorf("RateLimit = %+v, want nil", profile.RateLimit)
	}
}
