package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g. "sites[0].base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// AuthMethods lists the supported site authentication schemes.
var AuthMethods = []string{"app-password", "bearer-token", "basic", "api-key"}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateSites(cfg.Sites)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateRetry(&cfg.Retry)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxResponseBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_response_bytes",
			Message: "must be non-negative",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateSites(sites []SiteConfig) []FieldError {
	var errs []FieldError

	if len(sites) == 0 {
		errs = append(errs, FieldError{
			Field:   "sites",
			Message: "at least one site is required",
		})
		return errs
	}

	seen := make(map[string]bool, len(sites))
	for i := range sites {
		site := &sites[i]
		prefix := fmt.Sprintf("sites[%d]", i)

		if site.ID == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".id",
				Message: "site id is required",
			})
		} else if seen[site.ID] {
			errs = append(errs, FieldError{
				Field:   prefix + ".id",
				Message: fmt.Sprintf("duplicate site id %q", site.ID),
			})
		}
		seen[site.ID] = true

		errs = append(errs, validateBaseURL(prefix, site.BaseURL)...)
		errs = append(errs, validateAuth(prefix, &site.Auth)...)

		if site.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout must be positive",
			})
		}
		if site.MaxRetries < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_retries",
				Message: "max retries must be non-negative",
			})
		}
		if site.RateLimit != nil {
			if site.RateLimit.MaxRequests <= 0 {
				errs = append(errs, FieldError{
					Field:   prefix + ".rate_limit.max_requests",
					Message: "must be positive",
				})
			}
			if site.RateLimit.Window <= 0 {
				errs = append(errs, FieldError{
					Field:   prefix + ".rate_limit.window",
					Message: "must be positive",
				})
			}
		}
		if site.CacheTTL < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".cache_ttl",
				Message: "must be non-negative",
			})
		}
	}

	return errs
}

func validateBaseURL(prefix, baseURL string) []FieldError {
	var errs []FieldError

	if baseURL == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: "base URL is required",
		})
		return errs
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
		return errs
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme),
		})
	}
	if u.Host == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: "URL host is required",
		})
	}

	return errs
}

func validateAuth(prefix string, auth *AuthConfig) []FieldError {
	var errs []FieldError

	switch auth.Method {
	case "app-password":
		if auth.Username == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".auth.username",
				Message: "username is required for app-password auth",
			})
		}
		if auth.AppPassword == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".auth.app_password",
				Message: "application password is required for app-password auth",
			})
		}
	case "bearer-token":
		if auth.Token == "" && (auth.Username == "" || auth.Password == "") {
			errs = append(errs, FieldError{
				Field:   prefix + ".auth",
				Message: "bearer-token auth requires either a token or username and password for the login call",
			})
		}
	case "basic":
		if auth.Username == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".auth.username",
				Message: "username is required for basic auth",
			})
		}
		if auth.Password == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".auth.password",
				Message: "password is required for basic auth",
			})
		}
	case "api-key":
		if auth.APIKey == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".auth.api_key",
				Message: "api key is required for api-key auth",
			})
		}
	case "":
		errs = append(errs, FieldError{
			Field:   prefix + ".auth.method",
			Message: "auth method is required",
		})
	default:
		errs = append(errs, FieldError{
			Field:   prefix + ".auth.method",
			Message: fmt.Sprintf("unknown auth method %q (supported: %s)", auth.Method, strings.Join(AuthMethods, ", ")),
		})
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxEntries < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.max_entries",
			Message: "must be non-negative",
		})
	}
	if cfg.DefaultTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.default_ttl",
			Message: "must be non-negative",
		})
	}
	if cfg.SemiStaticTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.semi_static_ttl",
			Message: "must be non-negative",
		})
	}
	if cfg.StaticTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.static_ttl",
			Message: "must be non-negative",
		})
	}
	if cfg.SweepInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.sweep_interval",
			Message: "must be non-negative",
		})
	}
	if cfg.Disk.Enabled {
		if cfg.Disk.Path == "" {
			errs = append(errs, FieldError{
				Field:   "cache.disk.path",
				Message: "path is required when the disk cache is enabled",
			})
		}
		if cfg.Disk.PruneSchedule != "" {
			if _, err := cron.ParseStandard(cfg.Disk.PruneSchedule); err != nil {
				errs = append(errs, FieldError{
					Field:   "cache.disk.prune_schedule",
					Message: fmt.Sprintf("invalid cron expression: %v", err),
				})
			}
		}
	}

	return errs
}

func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxRequests <= 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.max_requests",
			Message: "must be positive",
		})
	}
	if cfg.Window <= 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.window",
			Message: "must be positive",
		})
	}
	if cfg.OnExhausted != "reject" && cfg.OnExhausted != "queue" {
		errs = append(errs, FieldError{
			Field:   "rate_limit.on_exhausted",
			Message: fmt.Sprintf("must be %q or %q, got %q", "reject", "queue", cfg.OnExhausted),
		})
	}
	if cfg.MaxQueueWait < 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.max_queue_wait",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateRetry(cfg *RetryConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseDelay <= 0 {
		errs = append(errs, FieldError{
			Field:   "retry.base_delay",
			Message: "must be positive",
		})
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		errs = append(errs, FieldError{
			Field:   "retry.max_delay",
			Message: "must be at least base_delay",
		})
	}
	if cfg.Jitter < 0 || cfg.Jitter > 1 {
		errs = append(errs, FieldError{
			Field:   "retry.jitter",
			Message: "must be in [0, 1]",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
			continue
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "must be in [0, 1]",
		})
	}

	return errs
}
