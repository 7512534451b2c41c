package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultServerName       = "pressgate"
	DefaultMaxResponseBytes = int64(10 * 1024 * 1024) // 10MB
	DefaultShutdownTimeout  = 10 * time.Second

	// Site defaults
	DefaultSiteTimeout    = 30 * time.Second
	DefaultSiteMaxRetries = 3
	DefaultAuthMethod     = "app-password"
	DefaultAPIKeyHeader   = "X-API-Key"

	// Cache defaults
	DefaultCacheEnabled       = true
	DefaultCacheMaxEntries    = 1000
	DefaultCacheTTL           = 5 * time.Minute
	DefaultCacheSemiStaticTTL = 30 * time.Minute
	DefaultCacheStaticTTL     = 2 * time.Hour
	DefaultCacheSweepInterval = time.Minute
	DefaultDiskCachePath      = "data/cache.db"
	DefaultDiskPruneSchedule  = "0 3 * * *"

	// Rate limit defaults
	DefaultRateLimitEnabled = true
	DefaultRateLimitMax     = 60
	DefaultRateLimitWindow  = time.Minute
	DefaultOnExhausted      = "reject"
	DefaultMaxQueueWait     = 30 * time.Second

	// Retry defaults
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultRetryMaxDelay  = 30 * time.Second
	DefaultRetryJitter    = 0.2

	// Telemetry defaults
	DefaultLoggingLevel    = "info"
	DefaultLoggingFormat   = "json"
	DefaultLoggingRedact   = true
	DefaultMetricsEnabled  = true
	DefaultMetricsPath     = "/metrics"
	DefaultMetricsNS       = "pressgate"
	DefaultTracingEnabled  = false
	DefaultTracingEndpoint = "localhost:4317"
	DefaultTracingInsecure = true
	DefaultSampleRatio     = 1.0
)

// DefaultRequestDurationBuckets are the histogram buckets for request
// durations, in seconds, sized for WordPress REST round trips.
var DefaultRequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// NewDefault returns a Config with the boolean fields that default to true
// already set. LoadConfig unmarshals the file over this seed so an absent
// key keeps the default while an explicit "false" still wins; ApplyDefaults
// fills the remaining zero-valued fields afterwards.
func NewDefault() *Config {
	return &Config{
		Cache:     CacheConfig{Enabled: DefaultCacheEnabled},
		RateLimit: RateLimitConfig{Enabled: DefaultRateLimitEnabled},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Redact: DefaultLoggingRedact},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{Insecure: DefaultTracingInsecure},
		},
	}
}

// ApplyDefaults fills zero-valued configuration fields with their defaults.
// It is idempotent and safe to call after environment overrides.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Name == "" {
		cfg.Server.Name = DefaultServerName
	}
	if cfg.Server.MaxResponseBytes == 0 {
		cfg.Server.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Site defaults - applied to each profile
	for i := range cfg.Sites {
		site := &cfg.Sites[i]
		if site.Name == "" {
			site.Name = site.ID
		}
		if site.Timeout == 0 {
			site.Timeout = DefaultSiteTimeout
		}
		if site.MaxRetries == 0 {
			site.MaxRetries = DefaultSiteMaxRetries
		}
		if site.Auth.Method == "" {
			site.Auth.Method = DefaultAuthMethod
		}
		if site.Auth.HeaderName == "" {
			site.Auth.HeaderName = DefaultAPIKeyHeader
		}
	}

	// Cache defaults
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Cache.SemiStaticTTL == 0 {
		cfg.Cache.SemiStaticTTL = DefaultCacheSemiStaticTTL
	}
	if cfg.Cache.StaticTTL == 0 {
		cfg.Cache.StaticTTL = DefaultCacheStaticTTL
	}
	if cfg.Cache.SweepInterval == 0 {
		cfg.Cache.SweepInterval = DefaultCacheSweepInterval
	}
	if cfg.Cache.Disk.Path == "" {
		cfg.Cache.Disk.Path = DefaultDiskCachePath
	}
	if cfg.Cache.Disk.Enabled && cfg.Cache.Disk.PruneSchedule == "" {
		cfg.Cache.Disk.PruneSchedule = DefaultDiskPruneSchedule
	}

	// Rate limit defaults
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = DefaultRateLimitMax
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultRateLimitWindow
	}
	if cfg.RateLimit.OnExhausted == "" {
		cfg.RateLimit.OnExhausted = DefaultOnExhausted
	}
	if cfg.RateLimit.MaxQueueWait == 0 {
		cfg.RateLimit.MaxQueueWait = DefaultMaxQueueWait
	}

	// Retry defaults
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = DefaultRetryBaseDelay
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = DefaultRetryMaxDelay
	}
	if cfg.Retry.Jitter == 0 {
		cfg.Retry.Jitter = DefaultRetryJitter
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNS
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultServerName
	}
}
