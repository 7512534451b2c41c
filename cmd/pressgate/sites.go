package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"presshq/pressgate/pkg/cli"
	"presshq/pressgate/pkg/config"
	"presshq/pressgate/pkg/sitefactory"
	"presshq/pressgate/pkg/telemetry/logging"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Inspect and test configured sites",
	Long:  `List the WordPress sites in the configuration and probe their connectivity.`,
}

var sitesListFlags struct {
	output string
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sites",
	Long: `List every site in the configuration with its base URL and auth method.

Examples:
  # Human-readable table
  pressgate sites list

  # Machine-readable forms
  pressgate sites list --output json
  pressgate sites list --output csv`,
	RunE: runSitesList,
}

var sitesTestFlags struct {
	output string
}

var sitesTestCmd = &cobra.Command{
	Use:   "test [site-id...]",
	Short: "Test connectivity and authentication for sites",
	Long: `Probe each configured site: first the unauthenticated REST index
(reachability), then an authenticated request (credentials).

With no arguments every site is tested; pass site ids to test a subset.

Examples:
  # Test all sites
  pressgate sites test

  # Test one site
  pressgate sites test blog

  # Machine-readable results
  pressgate sites test --output json`,
	RunE: runSitesTest,
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesTestCmd)

	sitesListCmd.Flags().StringVarP(&sitesListFlags.output, "output", "o", "text", "output format: text, json, csv")
	sitesTestCmd.Flags().StringVarP(&sitesTestFlags.output, "output", "o", "text", "output format: text, json")
}

// siteRow is the list command's JSON shape.
type siteRow struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	BaseURL    string `json:"base_url"`
	AuthMethod string `json:"auth_method"`
}

func runSitesList(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if len(cfg.Sites) == 0 {
		fmt.Println("No sites configured.")
		return nil
	}

	switch cli.OutputFormat(sitesListFlags.output) {
	case cli.FormatJSON:
		rows := make([]siteRow, 0, len(cfg.Sites))
		for _, site := range cfg.Sites {
			rows = append(rows, siteRow{
				ID:         site.ID,
				Name:       site.Name,
				BaseURL:    site.BaseURL,
				AuthMethod: site.Auth.Method,
			})
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, rows)

	case cli.FormatCSV:
		records := make([][]string, 0, len(cfg.Sites))
		for _, site := range cfg.Sites {
			records = append(records, []string{site.ID, site.Name, site.BaseURL, site.Auth.Method})
		}
		formatter := &cli.CSVFormatter{Headers: []string{"id", "name", "base_url", "auth_method"}}
		return formatter.FormatTo(os.Stdout, records)

	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tURL\tAUTH")
		for _, site := range cfg.Sites {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", site.ID, site.Name, site.BaseURL, site.Auth.Method)
		}
		return w.Flush()
	}
}

func runSitesTest(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	sites, err := selectSites(cfg, args)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		fmt.Println("No sites configured.")
		return nil
	}

	ctx := cli.SetupSignalHandler()
	deps := sitefactory.DepsFromConfig(cfg)
	deps.Logger = logging.Discard()

	checks := make([]sitefactory.SiteCheck, 0, len(sites))
	for _, site := range sites {
		c, err := sitefactory.New(site, deps)
		if err != nil {
			checks = append(checks, sitefactory.SiteCheck{
				ID:      site.ID,
				Name:    site.Name,
				BaseURL: site.BaseURL,
				Error:   err.Error(),
			})
			continue
		}
		checks = append(checks, sitefactory.Check(ctx, c))
		c.Close()
	}

	if cli.OutputFormat(sitesTestFlags.output) == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, checks); err != nil {
			return err
		}
	} else {
		fmt.Printf("Testing %d site(s)...\n\n", len(checks))
		for _, check := range checks {
			switch {
			case check.Error == "":
				fmt.Printf("✓ %s (%s): reachable, authenticated\n", check.ID, check.BaseURL)
			case check.Reachable:
				fmt.Printf("✗ %s (%s): reachable, %s\n", check.ID, check.BaseURL, check.Error)
			default:
				fmt.Printf("✗ %s (%s): %s\n", check.ID, check.BaseURL, check.Error)
			}
		}
	}

	failed := 0
	for _, check := range checks {
		if check.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		if cli.OutputFormat(sitesTestFlags.output) != cli.FormatJSON {
			fmt.Printf("\n%d of %d site(s) failed\n", failed, len(checks))
		}
		return cli.NewCommandError("sites", fmt.Errorf("%d of %d site(s) failed", failed, len(checks)))
	}
	return nil
}

// selectSites resolves the positional site-id arguments against the
// configuration. No arguments selects every site.
func selectSites(cfg *config.Config, ids []string) ([]config.SiteConfig, error) {
	if len(ids) == 0 {
		return cfg.Sites, nil
	}

	sites := make([]config.SiteConfig, 0, len(ids))
	for _, id := range ids {
		site, ok := cfg.SiteByID(id)
		if !ok {
			configured := make([]string, 0, len(cfg.Sites))
			for _, s := range cfg.Sites {
				configured = append(configured, s.ID)
			}
			return nil, cli.NewCommandError("sites",
				fmt.Errorf("site %q not found, configured sites: %v", id, configured))
		}
		sites = append(sites, *site)
	}
	return sites, nil
}
