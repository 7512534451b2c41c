package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{
		Sites: []SiteConfig{
			{ID: "prod", BaseURL: "https://example.com"},
		},
	}

	ApplyDefaults(cfg)

	if cfg.Server.Name != DefaultServerName {
		t.Errorf("expected server name %q, got %q", DefaultServerName, cfg.Server.Name)
	}
	if cfg.Server.MaxResponseBytes != DefaultMaxResponseBytes {
		t.Errorf("expected max response bytes %d, got %d", DefaultMaxResponseBytes, cfg.Server.MaxResponseBytes)
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("expected shutdown timeout %v, got %v", DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	}

	site := cfg.Sites[0]
	if site.Name != "prod" {
		t.Errorf("expected site name to default to id, got %q", site.Name)
	}
	if site.Timeout != DefaultSiteTimeout {
		t.Errorf("expected site timeout %v, got %v", DefaultSiteTimeout, site.Timeout)
	}
	if site.MaxRetries != DefaultSiteMaxRetries {
		t.Errorf("expected max retries %d, got %d", DefaultSiteMaxRetries, site.MaxRetries)
	}
	if site.Auth.Method != DefaultAuthMethod {
		t.Errorf("expected auth method %q, got %q", DefaultAuthMethod, site.Auth.Method)
	}

	if cfg.Cache.MaxEntries != DefaultCacheMaxEntries {
		t.Errorf("expected cache max entries %d, got %d", DefaultCacheMaxEntries, cfg.Cache.MaxEntries)
	}
	if cfg.Cache.DefaultTTL != DefaultCacheTTL {
		t.Errorf("expected cache TTL %v, got %v", DefaultCacheTTL, cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.SemiStaticTTL != DefaultCacheSemiStaticTTL {
		t.Errorf("expected semi-static TTL %v, got %v", DefaultCacheSemiStaticTTL, cfg.Cache.SemiStaticTTL)
	}
	if cfg.Cache.StaticTTL != DefaultCacheStaticTTL {
		t.Errorf("expected static TTL %v, got %v", DefaultCacheStaticTTL, cfg.Cache.StaticTTL)
	}
	if cfg.Cache.SweepInterval != DefaultCacheSweepInterval {
		t.Errorf("expected sweep interval %v, got %v", DefaultCacheSweepInterval, cfg.Cache.SweepInterval)
	}

	if cfg.RateLimit.MaxRequests != DefaultRateLimitMax {
		t.Errorf("expected rate limit %d, got %d", DefaultRateLimitMax, cfg.RateLimit.MaxRequests)
	}
	if cfg.RateLimit.Window != DefaultRateLimitWindow {
		t.Errorf("expected window %v, got %v", DefaultRateLimitWindow, cfg.RateLimit.Window)
	}
	if cfg.RateLimit.OnExhausted != DefaultOnExhausted {
		t.Errorf("expected on_exhausted %q, got %q", DefaultOnExhausted, cfg.RateLimit.OnExhausted)
	}
	if cfg.RateLimit.MaxQueueWait != DefaultMaxQueueWait {
		t.Errorf("expected max queue wait %v, got %v", DefaultMaxQueueWait, cfg.RateLimit.MaxQueueWait)
	}

	if cfg.Retry.BaseDelay != DefaultRetryBaseDelay {
		t.Errorf("expected base delay %v, got %v", DefaultRetryBaseDelay, cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay != DefaultRetryMaxDelay {
		t.Errorf("expected max delay %v, got %v", DefaultRetryMaxDelay, cfg.Retry.MaxDelay)
	}
	if cfg.Retry.Jitter != DefaultRetryJitter {
		t.Errorf("expected jitter %v, got %v", DefaultRetryJitter, cfg.Retry.Jitter)
	}

	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("expected log level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
		t.Errorf("expected log format %q, got %q", DefaultLoggingFormat, cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("expected metrics path %q, got %q", DefaultMetricsPath, cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Tracing.Endpoint != DefaultTracingEndpoint {
		t.Errorf("expected tracing endpoint %q, got %q", DefaultTracingEndpoint, cfg.Telemetry.Tracing.Endpoint)
	}
	if cfg.Telemetry.Tracing.SampleRatio != DefaultSampleRatio {
		t.Errorf("expected sample ratio %v, got %v", DefaultSampleRatio, cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Name: "custom"},
		Sites: []SiteConfig{
			{
				ID:         "prod",
				Name:       "Production",
				BaseURL:    "https://example.com",
				Timeout:    90 * time.Second,
				MaxRetries: 7,
				Auth:       AuthConfig{Method: "basic"},
			},
		},
		Cache: CacheConfig{MaxEntries: 42, DefaultTTL: time.Hour},
		Retry: RetryConfig{BaseDelay: time.Second, MaxDelay: time.Minute, Jitter: 0.5},
	}

	ApplyDefaults(cfg)

	if cfg.Server.Name != "custom" {
		t.Errorf("expected explicit server name to survive, got %q", cfg.Server.Name)
	}
	site := cfg.Sites[0]
	if site.Name != "Production" {
		t.Errorf("expected explicit site name to survive, got %q", site.Name)
	}
	if site.Timeout != 90*time.Second {
		t.Errorf("expected explicit timeout to survive, got %v", site.Timeout)
	}
	if site.MaxRetries != 7 {
		t.Errorf("expected explicit max retries to survive, got %d", site.MaxRetries)
	}
	if site.Auth.Method != "basic" {
		t.Errorf("expected explicit auth method to survive, got %q", site.Auth.Method)
	}
	if cfg.Cache.MaxEntries != 42 {
		t.Errorf("expected explicit max entries to survive, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Retry.Jitter != 0.5 {
		t.Errorf("expected explicit jitter to survive, got %v", cfg.Retry.Jitter)
	}
}

func TestApplyDefaults_DiskPruneScheduleOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{
		Sites: []SiteConfig{{ID: "prod", BaseURL: "https://example.com"}},
	}

	ApplyDefaults(cfg)
	if cfg.Cache.Disk.PruneSchedule != "" {
		t.Errorf("expected no prune schedule when disk cache disabled, got %q", cfg.Cache.Disk.PruneSchedule)
	}

	cfg.Cache.Disk.Enabled = true
	ApplyDefaults(cfg)
	if cfg.Cache.Disk.PruneSchedule != DefaultDiskPruneSchedule {
		t.Errorf("expected prune schedule %q, got %q", DefaultDiskPruneSchedule, cfg.Cache.Disk.PruneSchedule)
	}
	if cfg.Cache.Disk.Path != DefaultDiskCachePath {
		t.Errorf("expected disk path %q, got %q", DefaultDiskCachePath, cfg.Cache.Disk.Path)
	}
}

func TestNewDefault_SeedsEnabledFlags(t *testing.T) {
	cfg := NewDefault()

	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled in seed config")
	}
	if !cfg.RateLimit.Enabled {
		t.Error("expected rate limiting enabled in seed config")
	}
	if !cfg.Telemetry.Logging.Redact {
		t.Error("expected log redaction enabled in seed config")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled in seed config")
	}
	if !cfg.Telemetry.Tracing.Insecure {
		t.Error("expected insecure tracing transport in seed config")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing disabled in seed config")
	}
}
