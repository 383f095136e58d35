// Package main is the entry point for the ditto CLI.
//
// ditto can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	ditto exercise -c config.yaml  # Open a store and run the configured workload
//	ditto validate -c config.yaml  # Validate configuration
//	ditto version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/nickrobinson/ditto"
	"github.com/spf13/cobra"
)

// Build information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.commit=abc123"
var (
	commit = "none"
	date   = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "ditto",
	Short: "An embeddable in-memory key-value store",
	Long: `ditto is an embeddable, in-process, in-memory key-value store with
synchronous change notification.

The store is normally embedded as a library; this binary exists to try the
store from the command line and to validate configuration files.

Quick start:
  1. Create a config file (ditto.yaml)
  2. Run: ditto exercise -c ditto.yaml

Example config:
  path: app-cache
  table_size: 256
  max_subscriptions: 100
  workload:
    keys: 100
    value_size: 64
    iterations: 3
    subscribers: 2`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the library version, commit hash, and build date of this ditto binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ditto %s\n", ditto.Version())
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
