// Package config provides configuration management for Pressgate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("pressgate.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("pressgate.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PRESSGATE_SECTION_FIELD.
// For example:
//
//   - PRESSGATE_CACHE_ENABLED overrides cache.enabled
//   - PRESSGATE_RATE_LIMIT_MAX_REQUESTS overrides rate_limit.max_requests
//   - PRESSGATE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Per-site credentials use the site id (uppercased, dashes mapped to
// underscores):
//
//   - PRESSGATE_SITE_PROD_APP_PASSWORD overrides the app password of the
//     site with id "prod"
//   - PRESSGATE_SITE_STAGING_BLOG_BASE_URL overrides the base URL of the
//     site with id "staging-blog"
//
// Environment variables always take precedence over file-based
// configuration. Credential fields in the YAML file may also reference
// environment variables directly with ${VAR} syntax.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("pressgate.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.Name)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Hot Reload
//
// When server.watch_config is enabled, a Watcher observes the configuration
// file and swaps in the new configuration after each change. A configuration
// that fails validation is rejected and the previous one stays active.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// includes:
//
//   - Required field checks (e.g., site base URLs, auth credentials)
//   - Range validation (e.g., retry jitter must be in [0, 1])
//   - Format validation (e.g., absolute http(s) URLs, cron expressions)
//   - Per-method credential checks (e.g., app-password auth requires a
//     username and an application password)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - sites[0].base_url: base URL is required
//	  - sites[0].auth.app_password: application password is required for app-password auth
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	sites:
//	  - id: "prod"
//	    base_url: "https://example.com"
//	    auth:
//	      method: "app-password"
//	      username: "admin"
//	      app_password: "${WP_APP_PASSWORD}"
//
//	cache:
//	  enabled: true
//	  default_ttl: "5m"
//
//	rate_limit:
//	  max_requests: 60
//	  window: "1m"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
