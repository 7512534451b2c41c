package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pressgate",
	Short: "Pressgate - WordPress site management over MCP",
	Long: `Pressgate is an MCP (Model Context Protocol) server for managing
WordPress sites through the REST API.

It runs over stdio for MCP clients and provides:
  - Content tools for posts, pages, media, comments, and taxonomies
  - Multi-site management with per-site authentication
  - Automatic retries with exponential backoff
  - Per-site rate limiting and TTL-based response caching
  - Prometheus metrics and OpenTelemetry tracing

For more information, visit: https://github.com/presshq/pressgate`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
