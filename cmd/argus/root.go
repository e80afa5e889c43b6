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
	Use:   "argus",
	Short: "Argus - LLM call governance for AI security testing",
	Long: `Argus is the call governance core of an AI-security testing platform.

It budgets, meters, and learns from adversarial LLM traffic:
  - Token estimation and context-window management
  - Cost calculation for commercial and local models
  - Rate limiting and budget enforcement for probe traffic
  - Pattern learning from attack feedback`,
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
