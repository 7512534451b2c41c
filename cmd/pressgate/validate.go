package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"presshq/pressgate/pkg/cli"
	"presshq/pressgate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Check a Pressgate configuration file without starting the server.

The validate command loads the file, applies defaults and environment
variable overrides, and runs the full validation pass. Every problem found
is reported, not just the first one.

Examples:
  # Validate the default config
  pressgate validate

  # Validate a specific file
  pressgate validate --config /etc/pressgate/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "Configuration invalid: %d problem(s) found\n\n", len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Fprintf(os.Stderr, "  ✗ %s: %s\n", fe.Field, fe.Message)
			}
			fmt.Fprintln(os.Stderr)
			return cli.NewConfigError("", fmt.Sprintf("%d validation error(s)", len(verr.Errors)))
		}
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Server: %s\n", cfg.Server.Name)
	fmt.Printf("  Sites: %d\n", len(cfg.Sites))
	for _, site := range cfg.Sites {
		fmt.Printf("    - %s: %s (%s)\n", site.ID, site.BaseURL, site.Auth.Method)
	}
	fmt.Printf("  Cache: %s", onOff(cfg.Cache.Enabled))
	if cfg.Cache.Enabled && cfg.Cache.Disk.Enabled {
		fmt.Printf(" (disk: %s)", cfg.Cache.Disk.Path)
	}
	fmt.Println()
	fmt.Printf("  Rate limit: %s", onOff(cfg.RateLimit.Enabled))
	if cfg.RateLimit.Enabled {
		fmt.Printf(" (%d req / %s, %s)", cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.RateLimit.OnExhausted)
	}
	fmt.Println()
	fmt.Printf("  Metrics: %s\n", onOff(cfg.Telemetry.Metrics.Enabled))
	fmt.Printf("  Tracing: %s\n", onOff(cfg.Telemetry.Tracing.Enabled))

	return nil
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
