package config

import "time"

// Config is the root configuration structure for pressgate.
// It contains all configuration sections for the MCP server, the managed
// WordPress sites, caching, rate limiting, retry policy, and telemetry.
type Config struct {
	// Server contains settings for the MCP stdio server process.
	Server ServerConfig `yaml:"server"`

	// Sites contains the WordPress site profiles managed by this process.
	// At least one site is required. Site ids must be unique.
	Sites []SiteConfig `yaml:"sites"`

	// Cache contains configuration for the response cache, including the
	// optional on-disk layer.
	Cache CacheConfig `yaml:"cache"`

	// RateLimit contains per-site request admission settings.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Retry contains the backoff policy applied to retryable failures.
	Retry RetryConfig `yaml:"retry"`

	// Telemetry contains observability configuration: logging, metrics,
	// and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Debug enables verbose diagnostics. It is normally supplied by the
	// --verbose flag rather than the config file.
	// Default: false
	Debug bool `yaml:"debug"`
}

// ServerConfig contains settings for the MCP server process.
type ServerConfig struct {
	// Name is the server name reported in the MCP initialize handshake.
	// Default: "pressgate"
	Name string `yaml:"name"`

	// MaxResponseBytes caps the size of a WordPress response body read into
	// memory. Responses larger than this are truncated at the transport.
	// Default: 10485760 (10MB)
	MaxResponseBytes int64 `yaml:"max_response_bytes"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// WatchConfig enables hot-reloading of site profiles when the config
	// file changes on disk.
	// Default: false
	WatchConfig bool `yaml:"watch_config"`
}

// SiteConfig describes one managed WordPress site. The validated form of
// this struct is what a site client is constructed from; it is immutable
// after construction.
type SiteConfig struct {
	// ID uniquely identifies the site within this process. Required.
	ID string `yaml:"id"`

	// Name is a human-readable label used in logs and tool output.
	// Default: the site ID
	Name string `yaml:"name"`

	// BaseURL is the root URL of the WordPress installation, without the
	// /wp-json suffix. Required. Example: "https://blog.example.com".
	BaseURL string `yaml:"base_url"`

	// Auth contains the authentication settings for this site. Required.
	Auth AuthConfig `yaml:"auth"`

	// Timeout bounds each HTTP request to this site.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retry attempts for retryable failures.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RateLimit optionally overrides the global rate limit for this site.
	RateLimit *SiteRateLimit `yaml:"rate_limit"`

	// CacheTTL optionally overrides the resource-class TTLs with a single
	// fixed TTL for every cached response from this site. Zero means the
	// resource-class defaults apply.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// AuthConfig contains authentication settings for one site. Method selects
// the scheme; the remaining fields are interpreted per method and validated
// accordingly.
type AuthConfig struct {
	// Method is the authentication scheme. One of "app-password",
	// "bearer-token", "basic", or "api-key".
	// Default: "app-password"
	Method string `yaml:"method"`

	// Username is the WordPress account name. Required for app-password and
	// basic; required for bearer-token unless Token is supplied directly.
	Username string `yaml:"username"`

	// AppPassword is a WordPress application password (app-password method).
	// Environment references such as ${WP_APP_PASSWORD} are expanded at load.
	AppPassword string `yaml:"app_password"`

	// Password is the account password (basic method, and the bearer-token
	// login call). Basic auth is intended for local development only.
	Password string `yaml:"password"`

	// Token is a pre-issued bearer token (bearer-token method). When set, no
	// login call is made.
	Token string `yaml:"token"`

	// TokenURL is the endpoint used to obtain a bearer token.
	// Default: "<base_url>/wp-json/jwt-auth/v1/token"
	TokenURL string `yaml:"token_url"`

	// APIKey is the pre-shared key for the api-key method.
	APIKey string `yaml:"api_key"`

	// HeaderName is the request header carrying APIKey.
	// Default: "X-API-Key"
	HeaderName string `yaml:"header_name"`
}

// SiteRateLimit overrides the global rate limit window for a single site.
type SiteRateLimit struct {
	// MaxRequests is the number of requests admitted per window.
	MaxRequests int `yaml:"max_requests"`

	// Window is the fixed admission window length.
	Window time.Duration `yaml:"window"`
}

// CacheConfig contains configuration for the response cache.
type CacheConfig struct {
	// Enabled controls whether responses are cached at all.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// MaxEntries caps the in-memory layer. The least recently used entry is
	// evicted when the cap is reached.
	// Default: 1000
	MaxEntries int `yaml:"max_entries"`

	// DefaultTTL applies to dynamic resources (posts, pages, comments,
	// search results).
	// Default: 5m
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// SemiStaticTTL applies to slowly changing resources (users, media).
	// Default: 30m
	SemiStaticTTL time.Duration `yaml:"semi_static_ttl"`

	// StaticTTL applies to near-static resources (settings, categories,
	// tags).
	// Default: 2h
	StaticTTL time.Duration `yaml:"static_ttl"`

	// SweepInterval is how often the background sweep removes expired
	// entries from the in-memory layer.
	// Default: 1m
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// Disk contains the optional on-disk cache layer settings.
	Disk DiskCacheConfig `yaml:"disk"`
}

// DiskCacheConfig contains settings for the optional SQLite-backed cache
// layer. Entries written there survive process restarts and follow the same
// key, TTL, and invalidation semantics as the in-memory layer.
type DiskCacheConfig struct {
	// Enabled controls whether the on-disk layer is used.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/cache.db"
	Path string `yaml:"path"`

	// PruneSchedule is a cron expression for pruning expired rows.
	// An empty string disables scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// RateLimitConfig contains per-site request admission settings. Each site
// tracks its own fixed window; these settings apply to every site unless
// overridden in the site profile.
type RateLimitConfig struct {
	// Enabled controls whether admission control is applied.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// MaxRequests is the number of requests admitted per window per site.
	// Default: 60
	MaxRequests int `yaml:"max_requests"`

	// Window is the fixed admission window length.
	// Default: 1m
	Window time.Duration `yaml:"window"`

	// OnExhausted selects the behavior when a site's window is full:
	// "reject" fails the request immediately with a rate limit error,
	// "queue" waits until the window resets (bounded by MaxQueueWait).
	// Default: "reject"
	OnExhausted string `yaml:"on_exhausted"`

	// MaxQueueWait bounds the cooperative wait in queue mode.
	// Default: 30s
	MaxQueueWait time.Duration `yaml:"max_queue_wait"`
}

// RetryConfig contains the exponential backoff policy for retryable
// failures. The delay before retry n is min(MaxDelay, BaseDelay*2^n) plus a
// random jitter of up to Jitter times the computed delay. A server-provided
// Retry-After hint takes precedence over the computed delay.
type RetryConfig struct {
	// BaseDelay is the backoff delay before the first retry.
	// Default: 500ms
	BaseDelay time.Duration `yaml:"base_delay"`

	// MaxDelay caps the computed backoff delay.
	// Default: 30s
	MaxDelay time.Duration `yaml:"max_delay"`

	// Jitter is the random fraction added to each delay, in [0,1].
	// Default: 0.2
	Jitter float64 `yaml:"jitter"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text". Logs go to stderr so
	// they never interleave with the MCP stdio protocol on stdout.
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact scrubs credentials and other sensitive values from log output.
	// Default: true
	Redact bool `yaml:"redact"`

	// RedactPatterns adds custom redaction patterns on top of the built-in
	// credential patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern is a named regular expression whose matches are replaced in
// log output.
type RedactPattern struct {
	// Name labels the pattern in the redacted placeholder.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	// Default: "***"
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress optionally starts an HTTP listener exposing the metrics
	// endpoint. Empty disables exposition (metrics are still collected).
	// Example: "127.0.0.1:9090".
	ListenAddress string `yaml:"listen_address"`

	// Path is the exposition endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "pressgate"
	Namespace string `yaml:"namespace"`

	// Subsystem is the secondary metric name prefix.
	// Default: ""
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets overrides the histogram buckets for request
	// durations, in seconds.
	// Default: [0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported. When false a noop tracer
	// is installed.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint, host:port.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the exporter connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of requests traced, in [0,1].
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the otel service.name resource attribute.
	// Default: "pressgate"
	ServiceName string `yaml:"service_name"`
}

// SiteByID returns the site profile with the given id.
func (c *Config) SiteByID(id string) (*SiteConfig, bool) {
	for i := range c.Sites {
		if c.Sites[i].ID == id {
			return &c.Sites[i], true
		}
	}
	return nil, false
}

// DefaultSite returns the first configured site. Single-site deployments
// omit the site argument in tool calls and get this profile.
func (c *Config) DefaultSite() (*SiteConfig, bool) {
	if len(c.Sites) == 0 {
		return nil, false
	}
	return &c.Sites[0], true
}
