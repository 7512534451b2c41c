package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, expands environment references in site
// credentials, validates the configuration, and returns any errors.
// Environment variable overrides are not applied; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	expandSiteEnv(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// PRESSGATE_SECTION_FIELD (e.g. PRESSGATE_CACHE_ENABLED) and always take
// precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Expand ${VAR} references in site credential fields
//  3. Apply default values
//  4. Apply environment variable overrides
//  5. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// expandSiteEnv expands ${VAR} and $VAR references in site connection and
// credential fields so secrets can live in the environment rather than the
// config file. Expansion is limited to these fields; patterns elsewhere in
// the config (such as redaction regexes) are left untouched.
func expandSiteEnv(cfg *Config) {
	for i := range cfg.Sites {
		site := &cfg.Sites[i]
		site.BaseURL = os.ExpandEnv(site.BaseURL)
		site.Auth.Username = os.ExpandEnv(site.Auth.Username)
		site.Auth.AppPassword = os.ExpandEnv(site.Auth.AppPassword)
		site.Auth.Password = os.ExpandEnv(site.Auth.Password)
		site.Auth.Token = os.ExpandEnv(site.Auth.Token)
		site.Auth.TokenURL = os.ExpandEnv(site.Auth.TokenURL)
		site.Auth.APIKey = os.ExpandEnv(site.Auth.APIKey)
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format PRESSGATE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("PRESSGATE_SERVER_NAME"); val != "" {
		cfg.Server.Name = val
	}
	if val := os.Getenv("PRESSGATE_SERVER_MAX_RESPONSE_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxResponseBytes = i
		}
	}
	if val := os.Getenv("PRESSGATE_SERVER_WATCH_CONFIG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.WatchConfig = b
		}
	}

	// Cache overrides
	if val := os.Getenv("PRESSGATE_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if val := os.Getenv("PRESSGATE_CACHE_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxEntries = i
		}
	}
	if val := os.Getenv("PRESSGATE_CACHE_DEFAULT_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.DefaultTTL = d
		}
	}
	if val := os.Getenv("PRESSGATE_CACHE_DISK_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Disk.Enabled = b
		}
	}
	if val := os.Getenv("PRESSGATE_CACHE_DISK_PATH"); val != "" {
		cfg.Cache.Disk.Path = val
	}

	// Rate limit overrides
	if val := os.Getenv("PRESSGATE_RATE_LIMIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.Enabled = b
		}
	}
	if val := os.Getenv("PRESSGATE_RATE_LIMIT_MAX_REQUESTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.MaxRequests = i
		}
	}
	if val := os.Getenv("PRESSGATE_RATE_LIMIT_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RateLimit.Window = d
		}
	}
	if val := os.Getenv("PRESSGATE_RATE_LIMIT_ON_EXHAUSTED"); val != "" {
		cfg.RateLimit.OnExhausted = val
	}

	// Retry overrides
	if val := os.Getenv("PRESSGATE_RETRY_BASE_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retry.BaseDelay = d
		}
	}
	if val := os.Getenv("PRESSGATE_RETRY_MAX_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retry.MaxDelay = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("PRESSGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PRESSGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PRESSGATE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("PRESSGATE_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("PRESSGATE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("PRESSGATE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("PRESSGATE_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Per-site overrides
	for i := range cfg.Sites {
		applySiteEnvOverrides(&cfg.Sites[i])
	}
}

// applySiteEnvOverrides applies environment variable overrides for a single
// site. Site variables follow the format PRESSGATE_SITE_<ID>_<FIELD> where
// ID is the uppercased site id with dashes mapped to underscores.
func applySiteEnvOverrides(site *SiteConfig) {
	prefix := fmt.Sprintf("PRESSGATE_SITE_%s_", envKey(site.ID))

	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		site.BaseURL = val
	}
	if val := os.Getenv(prefix + "USERNAME"); val != "" {
		site.Auth.Username = val
	}
	if val := os.Getenv(prefix + "APP_PASSWORD"); val != "" {
		site.Auth.AppPassword = val
	}
	if val := os.Getenv(prefix + "PASSWORD"); val != "" {
		site.Auth.Password = val
	}
	if val := os.Getenv(prefix + "TOKEN"); val != "" {
		site.Auth.Token = val
	}
	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		site.Auth.APIKey = val
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			site.Timeout = d
		}
	}
	if val := os.Getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			site.MaxRetries = i
		}
	}
}

// envKey converts a site id to its environment variable segment.
func envKey(id string) string {
	return strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
}
