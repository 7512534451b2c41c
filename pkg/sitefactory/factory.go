// Package sitefactory builds site clients from validated configuration
// and manages their lifecycle. The factory converts a config.SiteConfig
// into a client.SiteProfile, wires the shared infrastructure (cache,
// rate limiter, telemetry) into the client, and lets the site's auth
// method select the credential strategy. The Manager holds one client
// per configured site and owns shutdown.
package sitefactory

import (
	"fmt"

	"presshq/pressgate/pkg/cache"
	"presshq/pressgate/pkg/client"
	"presshq/pressgate/pkg/client/auth"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/ratelimit"
	"presshq/pressgate/pkg/telemetry/logging"
	"presshq/pressgate/pkg/telemetry/metrics"
	"presshq/pressgate/pkg/telemetry/tracing"
)

// Deps is the shared infrastructure every site client plugs into.
// Cache, Limiter, Metrics and Tracer are built once at startup and
// handed to each client; the policies are derived from the root
// configuration. Nil fields disable the corresponding concern, same as
// client.Options.
type Deps struct {
	// Cache is the shared response cache. All sites share one manager;
	// entries are scoped by site id.
	Cache *cache.Manager

	// Limiter is the shared admission controller. Per-site overrides
	// from the site profile are registered at client construction.
	Limiter *ratelimit.Limiter

	// Metrics receives observations from every site client.
	Metrics *metrics.Collector

	// Tracer starts request spans when tracing is enabled.
	Tracer *tracing.Tracer

	// Logger is the root logger. Each client derives a site-scoped
	// logger from it.
	Logger *logging.Logger

	// Redactor sanitizes response-derived error text.
	Redactor *logging.Redactor

	// Retry is the backoff policy applied to retryable failures.
	Retry client.RetryPolicy

	// TTL maps resource classes to cache lifetimes.
	TTL client.TTLPolicy

	// MaxResponseBytes caps response bodies read into memory.
	MaxResponseBytes int64

	// UserAgent is sent with every request to every site.
	UserAgent string
}

// DepsFromConfig derives the policy fields of Deps from the root
// configuration. Shared infrastructure (cache, limiter, telemetry) is
// built separately at startup and attached by the caller.
func DepsFromConfig(cfg *config.Config) Deps {
	return Deps{
		Retry: client.RetryPolicy{
			BaseDelay: cfg.Retry.BaseDelay,
			MaxDelay:  cfg.Retry.MaxDelay,
			Jitter:    cfg.Retry.Jitter,
		},
		TTL: client.TTLPolicy{
			Dynamic:    cfg.Cache.DefaultTTL,
			SemiStatic: cfg.Cache.SemiStaticTTL,
			Static:     cfg.Cache.StaticTTL,
		},
		MaxResponseBytes: cfg.Server.MaxResponseBytes,
		UserAgent:        cfg.Server.Name,
	}
}

// New builds one site client from its validated configuration. The
// auth method in the site config selects the credential strategy;
// invalid or incomplete credentials fail here rather than on the first
// request.
func New(site config.SiteConfig, deps Deps) (*client.Client, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	logger.Debug("creating site client",
		"site", site.ID,
		"base_url", site.BaseURL,
		"auth_method", site.Auth.Method,
	)

	c, err := client.New(profileFor(site), client.Options{
		Cache:            deps.Cache,
		Limiter:          deps.Limiter,
		Metrics:          deps.Metrics,
		Tracer:           deps.Tracer,
		Logger:           deps.Logger,
		Redactor:         deps.Redactor,
		Retry:            deps.Retry,
		TTL:              deps.TTL,
		MaxResponseBytes: deps.MaxResponseBytes,
		UserAgent:        deps.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client for site %q: %w", site.ID, err)
	}

	logger.Info("site client created",
		"site", site.ID,
		"auth_method", c.Profile().Auth.Method,
	)

	return c, nil
}

// profileFor converts the YAML-facing site configuration into the
// client's profile form.
func profileFor(site config.SiteConfig) client.SiteProfile {
	profile := client.SiteProfile{
		ID:      site.ID,
		Name:    site.Name,
		BaseURL: site.BaseURL,
		Auth: auth.Config{
			Method:      auth.Method(site.Auth.Method),
			Username:    site.Auth.Username,
			AppPassword: site.Auth.AppPassword,
			Password:    site.Auth.Password,
			Token:       site.Auth.Token,
			TokenURL:    site.Auth.TokenURL,
			APIKey:      site.Auth.APIKey,
			HeaderName:  site.Auth.HeaderName,
		},
		Timeout:    site.Timeout,
		MaxRetries: site.MaxRetries,
		CacheTTL:   site.CacheTTL,
	}

	if site.RateLimit != nil {
		profile.RateLimit = &ratelimit.SiteLimit{
			MaxRequests: site.RateLimit.MaxRequests,
			Window:      site.RateLimit.Window,
		}
	}

	return profile
}
