package main

import (
	"fmt"

	"github.com/nickrobinson/ditto/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without opening a store.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a ditto configuration file without opening a store.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  ditto validate -c config.yaml
  ditto validate --config /etc/ditto/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Store path:        %s\n", cfg.Path)
	fmt.Printf("  Table size:        %d buckets\n", cfg.TableSize)
	fmt.Printf("  Max subscriptions: %d\n", cfg.MaxSubscriptions)
	fmt.Printf("  Workload:          %d keys x %d iterations, %d-byte values, %d subscribers\n",
		cfg.Workload.Keys, cfg.Workload.Iterations, cfg.Workload.ValueSize, cfg.Workload.Subscribers)

	return nil
}
