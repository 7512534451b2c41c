package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"presshq/pressgate/pkg/cache"
	"presshq/pressgate/pkg/cli"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/sitefactory"
	"presshq/pressgate/pkg/telemetry/logging"
	"presshq/pressgate/pkg/telemetry/metrics"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the response cache",
	Long: `Administer the local response cache.

The memory layer lives and dies with the serve process; these commands see
it empty. The persistent disk layer (when enabled) is shared, so stats,
clear, and warm operate on cached responses that outlive any one process.`,
}

var cacheOutputFlags struct {
	output string
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runCacheStats,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache configuration and entry counts",
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [pattern]",
	Short: "Remove cached entries",
	Long: `Remove cached entries across all sites.

With no argument every entry is removed. With a pattern only entries whose
canonical form (site, method, endpoint, parameters) contains the pattern
are removed.

Examples:
  # Clear everything
  pressgate cache clear

  # Clear all cached post listings, on every site
  pressgate cache clear wp/v2/posts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

var cacheWarmFlags struct {
	site string
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm <endpoints-file>",
	Short: "Pre-populate the cache from an endpoint list",
	Long: `Fetch a list of GET endpoints so later reads hit the cache.

The file contains one endpoint per line (for example "wp/v2/posts");
blank lines and lines starting with # are skipped.

Examples:
  # Warm the default site
  pressgate cache warm endpoints.txt

  # Warm a specific site
  pressgate cache warm endpoints.txt --site blog`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheWarm,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheWarmCmd)

	cacheCmd.PersistentFlags().StringVarP(&cacheOutputFlags.output, "output", "o", "text", "output format: text, json")
	cacheWarmCmd.Flags().StringVar(&cacheWarmFlags.site, "site", "", "site to warm (defaults to the only configured site)")
}

// newCacheManager maps the YAML-facing cache configuration onto the cache
// package's own config type. Shared with the serve command.
func newCacheManager(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) *cache.Manager {
	return cache.NewManager(cache.Config{
		Enabled:       cfg.Cache.Enabled,
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: cfg.Cache.SweepInterval,
		Disk: cache.DiskConfig{
			Enabled:       cfg.Cache.Disk.Enabled,
			Path:          cfg.Cache.Disk.Path,
			PruneSchedule: cfg.Cache.Disk.PruneSchedule,
		},
	}, logger, collector)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := openCache()
	if err != nil {
		return err
	}
	defer mgr.Close()

	ctx := cmd.Context()
	stats := mgr.Stats(ctx)

	if cli.OutputFormat(cacheOutputFlags.output) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, stats)
	}

	fmt.Println("Cache statistics:")
	fmt.Printf("  Hits:       %d\n", stats.Hits)
	fmt.Printf("  Misses:     %d\n", stats.Misses)
	fmt.Printf("  Hit rate:   %.1f%%\n", stats.HitRate*100)
	fmt.Printf("  Entries:    %d (memory: %d, disk: %d)\n", stats.Entries, stats.MemoryEntries, stats.DiskEntries)
	fmt.Printf("  Evictions:  %d\n", stats.Evictions)
	fmt.Printf("  Expired:    %d\n", stats.Expired)

	if !cfg.Cache.Disk.Enabled {
		fmt.Println("\nNote: disk cache is disabled; only this process's (empty) memory layer is visible.")
	}
	return nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	_, mgr, err := openCache()
	if err != nil {
		return err
	}
	defer mgr.Close()

	info := mgr.Info(cmd.Context())

	if cli.OutputFormat(cacheOutputFlags.output) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, info)
	}

	fmt.Println("Cache configuration:")
	fmt.Printf("  Enabled:         %t\n", info.Enabled)
	fmt.Printf("  Max entries:     %d\n", info.MaxEntries)
	fmt.Printf("  Sweep interval:  %s\n", info.SweepInterval)
	if info.DiskEnabled {
		fmt.Printf("  Disk layer:      enabled (%s)\n", info.DiskPath)
		if info.PruneSchedule != "" {
			fmt.Printf("  Prune schedule:  %s\n", info.PruneSchedule)
		}
	} else {
		fmt.Printf("  Disk layer:      disabled\n")
	}
	fmt.Printf("  Entries:         memory %d, disk %d\n", info.MemoryEntries, info.DiskEntries)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := openCache()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if !cfg.Cache.Enabled {
		fmt.Println("Cache is disabled; nothing to clear.")
		return nil
	}

	pattern := ""
	if len(args) > 0 {
		pattern = strings.TrimSpace(args[0])
	}

	removed := mgr.Clear(cmd.Context(), pattern)
	if pattern != "" {
		fmt.Printf("✓ Removed %d cache entries matching %q\n", removed, pattern)
	} else {
		fmt.Printf("✓ Removed %d cache entries\n", removed)
	}
	return nil
}

func runCacheWarm(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := openCache()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if !cfg.Cache.Enabled {
		return cli.NewCommandError("cache", fmt.Errorf("cache is disabled in configuration"))
	}

	endpoints, err := readEndpointList(args[0])
	if err != nil {
		return cli.NewCommandError("cache", err)
	}
	if len(endpoints) == 0 {
		fmt.Println("No endpoints to warm.")
		return nil
	}

	site, err := warmTarget(cfg)
	if err != nil {
		return err
	}

	deps := sitefactory.DepsFromConfig(cfg)
	deps.Cache = mgr
	deps.Logger = logging.Discard()

	c, err := sitefactory.New(*site, deps)
	if err != nil {
		return cli.NewCommandError("cache", err)
	}
	defer c.Close()

	if !cfg.Cache.Disk.Enabled {
		fmt.Println("Note: disk cache is disabled; warmed entries live only in this process.")
	}

	ctx := cli.SetupSignalHandler()
	progress := cli.NewLabeledProgressReporter(os.Stdout, "Warming")
	progress.Start(int64(len(endpoints)))

	var failures []string
	for i, endpoint := range endpoints {
		if err := c.CacheWarm(ctx, []string{endpoint}); err != nil {
			failures = append(failures, err.Error())
		}
		progress.Update(int64(i + 1))

		if ctx.Err() != nil {
			progress.Error(ctx.Err())
			return cli.NewCommandError("cache", ctx.Err())
		}
	}
	progress.Finish()

	if len(failures) > 0 {
		fmt.Printf("✗ %d of %d endpoints failed:\n", len(failures), len(endpoints))
		for _, failure := range failures {
			fmt.Printf("  - %s\n", failure)
		}
		return cli.NewCommandError("cache", fmt.Errorf("%d of %d endpoints failed", len(failures), len(endpoints)))
	}

	fmt.Printf("✓ Warmed %d endpoints for site %q\n", len(endpoints), site.ID)
	return nil
}

// openCache loads the configuration and opens the cache manager over it.
func openCache() (*config.Config, *cache.Manager, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()
	return cfg, newCacheManager(cfg, logging.Discard().Slog(), nil), nil
}

// warmTarget picks the site to warm: the --site flag, or the only
// configured site.
func warmTarget(cfg *config.Config) (*config.SiteConfig, error) {
	if cacheWarmFlags.site != "" {
		site, ok := cfg.SiteByID(cacheWarmFlags.site)
		if !ok {
			return nil, cli.NewCommandError("cache", fmt.Errorf("site %q not found", cacheWarmFlags.site))
		}
		return site, nil
	}

	if len(cfg.Sites) != 1 {
		return nil, cli.NewCommandError("cache", fmt.Errorf("%d sites are configured, specify one with --site", len(cfg.Sites)))
	}
	site, _ := cfg.DefaultSite()
	return site, nil
}

// readEndpointList reads one endpoint per line, skipping blanks and
// # comments.
func readEndpointList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoint list: %w", err)
	}
	defer f.Close()

	var endpoints []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		endpoints = append(endpoints, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read endpoint list: %w", err)
	}
	return endpoints, nil
}
