package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vantasec/argus/pkg/costs"
	"github.com/vantasec/argus/pkg/tokens"
)

var estimateFlags struct {
	model        string
	text         string
	outputTokens int
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate tokens and cost for a prompt",
	Long: `Estimate the token count, context-window fit, and dollar cost of a
prompt against a given model.

Reads the prompt from --text, or from stdin when --text is omitted.

Examples:
  # Estimate a literal prompt
  argus estimate --model gpt-4 --text "Hello, world"

  # Estimate a prompt file with an expected 1000-token reply
  argus estimate --model claude-3-opus --output-tokens 1000 < prompt.txt`,
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().StringVarP(&estimateFlags.model, "model", "m", "gpt-4", "target model name")
	estimateCmd.Flags().StringVarP(&estimateFlags.text, "text", "t", "", "prompt text (reads stdin when omitted)")
	estimateCmd.Flags().IntVar(&estimateFlags.outputTokens, "output-tokens", 500, "expected output tokens for cost estimation")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	text := estimateFlags.text
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	counter := tokens.NewCounter(estimateFlags.model)
	ok, count, available := counter.CheckWithinLimit(text, estimateFlags.outputTokens)
	limit := tokens.ContextLimit(estimateFlags.model)
	cost := costs.EstimateCost(estimateFlags.model, count, estimateFlags.outputTokens)

	fmt.Printf("model:          %s\n", estimateFlags.model)
	fmt.Printf("input tokens:   %d\n", count)
	fmt.Printf("context limit:  %d\n", limit)
	fmt.Printf("fits context:   %v (%d tokens available)\n", ok, available)
	fmt.Printf("estimated cost: $%.6f (with %d output tokens)\n", cost, estimateFlags.outputTokens)
	return nil
}
