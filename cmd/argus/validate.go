package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vantasec/argus/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate an argus configuration file.

The validate command parses the YAML configuration, applies defaults,
applies ARGUS_* environment overrides, and reports the first semantic
error found. A valid configuration prints the effective limits.

Examples:
  # Validate the default config file
  argus validate

  # Validate a specific file
  argus validate --config /etc/argus/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration valid: %s\n", cfgFile)
	fmt.Printf("  requests/minute:  %d\n", cfg.Governor.RateLimit.RequestsPerMinute)
	fmt.Printf("  requests/day:     %d\n", cfg.Governor.RateLimit.RequestsPerDay)
	fmt.Printf("  concurrency:      %d\n", cfg.Governor.RateLimit.ConcurrentRequests)
	fmt.Printf("  daily budget:     $%.2f\n", cfg.Governor.Budget.DailyLimitUSD)
	fmt.Printf("  monthly budget:   $%.2f\n", cfg.Governor.Budget.MonthlyLimitUSD)
	fmt.Printf("  pattern store:    %s (%s)\n", cfg.Learner.Store.Backend, cfg.Learner.Store.Path)
	return nil
}
