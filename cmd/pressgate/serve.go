package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"presshq/pressgate/pkg/cli"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/mcp"
	"presshq/pressgate/pkg/ratelimit"
	"presshq/pressgate/pkg/sitefactory"
	"presshq/pressgate/pkg/telemetry/health"
	"presshq/pressgate/pkg/telemetry/logging"
	"presshq/pressgate/pkg/telemetry/metrics"
	"presshq/pressgate/pkg/telemetry/tracing"
)

var serveFlags struct {
	logLevel string
	dryRun   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the Pressgate MCP server with the specified configuration.

The server reads JSON-RPC requests from stdin and writes responses to stdout,
so it must be launched by an MCP client (or a test harness) that owns both
pipes. All logs go to stderr.

Examples:
  # Start with default config
  pressgate serve

  # Start with custom config
  pressgate serve --config /etc/pressgate/config.yaml

  # Override log level
  pressgate serve --log-level debug

  # Validate config without starting the server
  pressgate serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if cfg.Debug || verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	// Initialize logging based on config. Logs go to stderr so they never
	// interleave with the MCP protocol on stdout.
	logger, err := logging.New(logging.Config{
		Level:          cfg.Telemetry.Logging.Level,
		Format:         cfg.Telemetry.Logging.Format,
		AddSource:      cfg.Telemetry.Logging.AddSource,
		Redact:         cfg.Telemetry.Logging.Redact,
		RedactPatterns: cfg.Telemetry.Logging.RedactPatterns,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slogger := logger.Slog()
	slog.SetDefault(slogger)

	if serveFlags.dryRun {
		fmt.Printf("✓ Configuration valid (%d sites)\n", len(cfg.Sites))
		for _, site := range cfg.Sites {
			fmt.Printf("  - %s: %s (%s)\n", site.ID, site.BaseURL, site.Auth.Method)
		}
		return nil
	}

	// Print startup banner (stderr; stdout belongs to the protocol)
	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics collector (listener starts later, once sites exist for the
	// readiness check)
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	// Trace exporter
	var tracer *tracing.Tracer
	if cfg.Telemetry.Tracing.Enabled {
		tracer, err = tracing.New(&cfg.Telemetry.Tracing)
		if err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("failed to initialize tracing: %w", err))
		}
	}

	// Response cache
	cacheMgr := newCacheManager(cfg, slogger, collector)
	if err := cacheMgr.Start(ctx); err != nil {
		logger.Warn("cache maintenance failed to start", "error", err)
	}

	// Rate limiter
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Enabled:      cfg.RateLimit.Enabled,
		MaxRequests:  cfg.RateLimit.MaxRequests,
		Window:       cfg.RateLimit.Window,
		OnExhausted:  cfg.RateLimit.OnExhausted,
		MaxQueueWait: cfg.RateLimit.MaxQueueWait,
	})

	// Site clients
	logger.Info("initializing site manager")
	deps := sitefactory.DepsFromConfig(cfg)
	deps.Cache = cacheMgr
	deps.Limiter = limiter
	deps.Metrics = collector
	deps.Tracer = tracer
	deps.Logger = logger
	if cfg.Telemetry.Logging.Redact {
		deps.Redactor = logging.NewRedactor(cfg.Telemetry.Logging.RedactPatterns)
	}

	manager := sitefactory.NewManager(deps)
	if len(cfg.Sites) > 0 {
		if err := manager.LoadFromConfig(cfg.Sites); err != nil {
			logger.Warn("some sites failed to initialize", "error", err)
		}
	} else {
		logger.Warn("no sites configured")
	}
	fmt.Fprintf(os.Stderr, "✓ Site clients initialized (%d sites)\n", manager.Count())

	// Configuration hot reload
	if cfg.Server.WatchConfig {
		watcher, werr := config.NewWatcher(cfgFile, slogger)
		if werr != nil {
			logger.Warn("config watcher unavailable", "error", werr)
		} else {
			go func() {
				if err := watcher.Watch(ctx, func() error {
					if err := config.ReloadConfig(cfgFile); err != nil {
						return err
					}
					return manager.Reload(config.GetConfig().Sites)
				}); err != nil {
					logger.Error("config watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	// Metrics and health listener
	var metricsSrv *http.Server
	if collector != nil && cfg.Telemetry.Metrics.ListenAddress != "" {
		checker := health.New(0)
		checker.RegisterCheck("sites", func(ctx context.Context) error {
			if len(config.GetConfig().Sites) > 0 && manager.Count() == 0 {
				return errors.New("no site clients initialized")
			}
			return nil
		})

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		health.HTTPMiddleware(mux, checker, Version, GitCommit, BuildDate)

		metricsSrv = &http.Server{
			Addr:    cfg.Telemetry.Metrics.ListenAddress,
			Handler: mux,
		}
		go func() {
			logger.Info("metrics listener started",
				"address", cfg.Telemetry.Metrics.ListenAddress,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	// MCP server on stdio
	srv := mcp.New(manager, cacheMgr, logger, cfg.Server.Name, Version)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("mcp server started",
			"name", cfg.Server.Name,
			"version", Version,
			"sites", manager.Count(),
		)
		errChan <- srv.Run(ctx, os.Stdin, os.Stdout)
	}()

	fmt.Fprintln(os.Stderr, "✓ MCP server listening on stdio")

	// Wait for client disconnect (stdin EOF) or shutdown signal
	sigChan := cli.WaitForShutdown()

	var runErr error
	select {
	case err := <-errChan:
		runErr = err
		logger.Info("mcp client disconnected")
	case sig := <-sigChan:
		fmt.Fprintf(os.Stderr, "\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()
	}

	// Ordered teardown: site clients first, then the stores and exporters
	// they write to.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := manager.CloseAll(); err != nil {
		logger.Warn("site client shutdown reported errors", "error", err)
	}
	if err := cacheMgr.Close(); err != nil {
		logger.Warn("cache shutdown reported errors", "error", err)
	}
	if tracer != nil {
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("trace exporter shutdown failed", "error", err)
		}
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics listener shutdown failed", "error", err)
		}
	}

	fmt.Fprintln(os.Stderr, "✓ Server stopped")

	if runErr != nil {
		return cli.NewCommandError("serve", runErr)
	}
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "Pressgate %s\n", Version)
	fmt.Fprintf(os.Stderr, "Loading configuration from: %s\n", cfgFile)
	fmt.Fprintln(os.Stderr, "✓ Configuration loaded")

	slog.Debug("sites configured", "count", len(cfg.Sites))
	slog.Debug("cache", "enabled", cfg.Cache.Enabled, "disk", cfg.Cache.Disk.Enabled)
	slog.Debug("rate limit", "enabled", cfg.RateLimit.Enabled)
	if cfg.Telemetry.Tracing.Enabled {
		slog.Debug("tracing", "endpoint", cfg.Telemetry.Tracing.Endpoint)
	}
}
