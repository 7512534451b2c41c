package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func findCommand(t *testing.T, parent *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %q not registered on %q", name, parent.Name())
	return nil
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "pressgate" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "pressgate")
	}
	if rootCmd.Version == "" {
		t.Error("rootCmd.Version should not be empty")
	}

	if flag := rootCmd.PersistentFlags().Lookup("config"); flag == nil {
		t.Error("missing persistent --config flag")
	} else if flag.DefValue != "config.yaml" {
		t.Errorf("--config default = %q, want %q", flag.DefValue, "config.yaml")
	}
	if rootCmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("missing persistent --verbose flag")
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "validate", "sites", "cache", "version"} {
		cmd := findCommand(t, rootCmd, name)
		if cmd.Short == "" {
			t.Errorf("command %q has no short description", name)
		}
	}
}

func TestServeFlags(t *testing.T) {
	serve := findCommand(t, rootCmd, "serve")

	if serve.Flags().Lookup("log-level") == nil {
		t.Error("serve is missing --log-level")
	}
	if serve.Flags().Lookup("dry-run") == nil {
		t.Error("serve is missing --dry-run")
	}
	if serve.RunE == nil {
		t.Error("serve.RunE should not be nil")
	}
}

func TestSitesSubcommands(t *testing.T) {
	sites := findCommand(t, rootCmd, "sites")

	list := findCommand(t, sites, "list")
	if list.Flags().Lookup("output") == nil {
		t.Error("sites list is missing --output")
	}

	test := findCommand(t, sites, "test")
	if test.Flags().Lookup("output") == nil {
		t.Error("sites test is missing --output")
	}
}

func TestCacheSubcommands(t *testing.T) {
	cacheCommand := findCommand(t, rootCmd, "cache")

	for _, name := range []string{"stats", "clear", "warm", "info"} {
		findCommand(t, cacheCommand, name)
	}

	if cacheCommand.PersistentFlags().Lookup("output") == nil {
		t.Error("cache is missing persistent --output")
	}

	warm := findCommand(t, cacheCommand, "warm")
	if warm.Flags().Lookup("site") == nil {
		t.Error("cache warm is missing --site")
	}
	if warm.Args == nil {
		t.Error("cache warm should require an endpoints file argument")
	}
}
