package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"presshq/pressgate/pkg/cache"
	"presshq/pressgate/pkg/client/auth"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/ratelimit"
	"presshq/pressgate/pkg/telemetry/logging"
	"presshq/pressgate/pkg/telemetry/metrics"
	"presshq/pressgate/pkg/telemetry/tracing"
)

// SiteProfile identifies one WordPress site and how to talk to it.
type SiteProfile struct {
	// ID uniquely identifies the site. It scopes cache entries, rate
	// limit windows, logs and metric labels. Required.
	ID string

	// Name is a human-readable label. Defaults to ID.
	Name string

	// BaseURL is the site root, e.g. "https://blog.example.com". The
	// REST API is reached under BaseURL/wp-json/. Required.
	BaseURL string

	// Auth selects and configures the credential strategy.
	Auth auth.Config

	// Timeout bounds each request attempt. Default: 30s.
	Timeout time.Duration

	// MaxRetries is how many retries a retryable failure gets on top
	// of the initial attempt. Zero means the default of 3; a negative
	// value disables retries.
	MaxRetries int

	// RateLimit overrides the shared limiter's default admission limit
	// for this site.
	RateLimit *ratelimit.SiteLimit

	// CacheTTL replaces the per-resource-class TTLs with one fixed TTL
	// for every cached response from this site. Zero keeps the
	// per-class policy.
	CacheTTL time.Duration
}

// RetryPolicy shapes the backoff between retry attempts.
type RetryPolicy struct {
	// BaseDelay is the first retry's delay; later attempts double it.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay, server-suggested waits
	// included.
	MaxDelay time.Duration

	// Jitter adds up to this fraction of the delay as random spread,
	// so retries from concurrent callers do not align.
	Jitter float64
}

// TTLPolicy maps resource TTL classes to cache lifetimes.
type TTLPolicy struct {
	Dynamic    time.Duration
	SemiStatic time.Duration
	Static     time.Duration
}

// Options carries the shared infrastructure a client plugs into.
// Every field is optional; zero values degrade to a standalone client
// with no cache, no admission control and no telemetry.
type Options struct {
	// HTTPClient overrides the pooled transport New would build. The
	// client never closes a transport it did not create.
	HTTPClient *http.Client

	// Cache serves GET responses and absorbs write invalidation. Nil
	// disables caching.
	Cache *cache.Manager

	// Limiter admits requests before any network activity. Nil
	// disables admission control.
	Limiter *ratelimit.Limiter

	// Metrics receives request, error, retry, rate limit and auth
	// observations.
	Metrics *metrics.Collector

	// Tracer starts one span per request when tracing is enabled.
	Tracer *tracing.Tracer

	// Logger receives structured request logs. Nil discards them.
	Logger *logging.Logger

	// Redactor sanitizes error messages built from response bodies and
	// transport errors. Nil falls back to the default patterns.
	Redactor *logging.Redactor

	// Retry shapes backoff between attempts. Zero fields take the
	// package defaults.
	Retry RetryPolicy

	// TTL maps resource classes to cache lifetimes. Zero fields take
	// the package defaults.
	TTL TTLPolicy

	// MaxResponseBytes caps how much of a response body is read.
	// Default: 10MB.
	MaxResponseBytes int64

	// UserAgent is sent with every request.
	UserAgent string
}

// Client is a resilient HTTP client for one WordPress site. Requests
// are validated before any I/O, cacheable reads are served from the
// cache, admission control runs before the network, authentication
// happens lazily on first use, transient failures retry with
// exponential backoff, and every failure comes back as one of this
// package's typed errors.
//
// A Client is safe for concurrent use.
type Client struct {
	profile SiteProfile

	httpClient *http.Client
	ownsHTTP   bool

	auth     *auth.Authenticator
	cache    *cache.Manager
	limiter  *ratelimit.Limiter
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	logger   *logging.Logger
	classify *classifier

	retry            RetryPolicy
	ttl              TTLPolicy
	maxResponseBytes int64
	userAgent        string

	stats statsTracker
}

// New builds a client for one site. The profile's credentials are
// validated for shape here; they are not exercised against the site
// until the first request or an explicit Authenticate.
func New(profile SiteProfile, opts Options) (*Client, error) {
	if strings.TrimSpace(profile.ID) == "" {
		return nil, errors.New("client: site ID is required")
	}
	base := strings.TrimSuffix(strings.TrimSpace(profile.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("client: base URL is required for site %q", profile.ID)
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: invalid base URL %q for site %q", profile.BaseURL, profile.ID)
	}
	profile.BaseURL = base

	if profile.Name == "" {
		profile.Name = profile.ID
	}
	if profile.Timeout <= 0 {
		profile.Timeout = config.DefaultSiteTimeout
	}
	switch {
	case profile.MaxRetries == 0:
		profile.MaxRetries = config.DefaultSiteMaxRetries
	case profile.MaxRetries < 0:
		profile.MaxRetries = 0
	}

	httpClient := opts.HTTPClient
	ownsHTTP := false
	if httpClient == nil {
		httpClient = &http.Client{Transport: newTransport()}
		ownsHTTP = true
	}

	authCfg := profile.Auth
	if authCfg.BaseURL == "" {
		authCfg.BaseURL = profile.BaseURL
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("site", profile.ID)

	authenticator, err := auth.New(authCfg, httpClient, logger.Slog())
	if err != nil {
		return nil, fmt.Errorf("client: site %q: %w", profile.ID, err)
	}

	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewCollector(&config.MetricsConfig{}, nil)
	}

	retry := opts.Retry
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = config.DefaultRetryBaseDelay
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = config.DefaultRetryMaxDelay
	}
	if retry.Jitter < 0 {
		retry.Jitter = 0
	}

	ttl := opts.TTL
	if ttl.Dynamic <= 0 {
		ttl.Dynamic = config.DefaultCacheTTL
	}
	if ttl.SemiStatic <= 0 {
		ttl.SemiStatic = config.DefaultCacheSemiStaticTTL
	}
	if ttl.Static <= 0 {
		ttl.Static = config.DefaultCacheStaticTTL
	}

	maxBytes := opts.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxResponseBytes
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultServerName
	}

	if opts.Limiter != nil && profile.RateLimit != nil {
		opts.Limiter.SetSiteLimit(profile.ID, *profile.RateLimit)
	}

	return &Client{
		profile:          profile,
		httpClient:       httpClient,
		ownsHTTP:         ownsHTTP,
		auth:             authenticator,
		cache:            opts.Cache,
		limiter:          opts.Limiter,
		metrics:          collector,
		tracer:           opts.Tracer,
		logger:           logger,
		classify:         newClassifier(opts.Redactor),
		retry:            retry,
		ttl:              ttl,
		maxResponseBytes: maxBytes,
		userAgent:        userAgent,
	}, nil
}

// newTransport builds the pooled transport shared by a client's
// attempts. Keep-alive pooling matters here: every request to a site
// hits the same host, so idle connections are nearly always reusable.
func newTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// Profile returns a copy of the site profile the client was built
// with, defaults applied.
func (c *Client) Profile() SiteProfile { return c.profile }

// Get performs a GET request against a REST route relative to wp-json.
func (c *Client) Get(ctx context.Context, endpoint string, opts *RequestOptions) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, endpoint, nil, opts)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data any, opts *RequestOptions) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, endpoint, data, opts)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, data any, opts *RequestOptions) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, endpoint, data, opts)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, data any, opts *RequestOptions) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPatch, endpoint, data, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, opts *RequestOptions) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, endpoint, nil, opts)
}

// Ping checks that the site's REST API answers at all. It hits the
// wp-json index without credentials, skipping cache, admission control
// and retries, so a failing Ping isolates connectivity from the rest
// of the pipeline.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.profile.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profile.BaseURL+"/wp-json", nil)
	if err != nil {
		return c.classify.classify(err, "ping")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classify.classify(err, "ping")
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return c.classify.classifyStatus("ping", resp.StatusCode, nil, 0)
}

// Authenticate establishes a session eagerly. Requests authenticate
// lazily on first use, so calling this is only needed to surface
// credential problems ahead of traffic.
func (c *Client) Authenticate(ctx context.Context) error {
	return c.ensureAuth(ctx, nil)
}

// IsAuthenticated reports whether the client holds a usable session.
func (c *Client) IsAuthenticated() bool { return c.auth.IsAuthenticated() }

// AuthStatus describes the session for diagnostics.
func (c *Client) AuthStatus() auth.Status { return c.auth.Status() }

// Stats returns a snapshot of the request counters.
func (c *Client) Stats() RequestStats { return c.stats.snapshot() }

// ResetStats zeroes the request counters.
func (c *Client) ResetStats() { c.stats.reset() }

// CacheStats reports the shared cache's counters. The second return is
// false when the client runs without a cache.
func (c *Client) CacheStats(ctx context.Context) (cache.Stats, bool) {
	if c.cache == nil {
		return cache.Stats{}, false
	}
	return c.cache.Stats(ctx), true
}

// CacheInfo reports the shared cache's configuration. The second
// return is false when the client runs without a cache.
func (c *Client) CacheInfo(ctx context.Context) (cache.Info, bool) {
	if c.cache == nil {
		return cache.Info{}, false
	}
	return c.cache.Info(ctx), true
}

// CacheClear removes this site's cached entries and returns how many
// rows were dropped across layers.
func (c *Client) CacheClear(ctx context.Context) int {
	if c.cache == nil {
		return 0
	}
	return c.cache.InvalidateSite(ctx, c.profile.ID)
}

// CacheWarm fetches the given GET endpoints so their responses are
// cached before real traffic needs them. Fetches bypass the cache on
// the way in, so warming refreshes entries that already exist. Failed
// endpoints are collected rather than aborting the sweep.
func (c *Client) CacheWarm(ctx context.Context, endpoints []string) error {
	var errs []error
	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := c.Get(ctx, endpoint, &RequestOptions{SkipCache: true}); err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", endpoint, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the client's own transport resources. Transports
// supplied by the caller are left alone.
func (c *Client) Close() error {
	if c.ownsHTTP {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
