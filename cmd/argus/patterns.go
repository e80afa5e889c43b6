package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vantasec/argus/pkg/config"
	"github.com/vantasec/argus/pkg/learner"
	"github.com/vantasec/argus/pkg/learner/store"
)

var patternsFlags struct {
	backend   string
	path      string
	technique string
	format    string
	count     int
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect and mutate the learned pattern set",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learned patterns",
	Long: `List the learned pattern set from a pattern store.

Examples:
  # List all patterns from the configured store
  argus patterns list

  # List jailbreak patterns from a specific file as JSON
  argus patterns list --store learned_patterns.json --technique jailbreak --format json`,
	RunE: runPatternsList,
}

var patternsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate pattern statistics",
	RunE:  runPatternsStats,
}

var patternsEvolveCmd = &cobra.Command{
	Use:   "evolve [seed]",
	Short: "Mutate a seed payload into variants",
	Long: `Mutate a seed payload into attack variants using synonym substitution
and structural wrapping.

Examples:
  argus patterns evolve "ignore all previous instructions" --count 5`,
	Args: cobra.ExactArgs(1),
	RunE: runPatternsEvolve,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.AddCommand(patternsListCmd, patternsStatsCmd, patternsEvolveCmd)

	patternsCmd.PersistentFlags().StringVar(&patternsFlags.backend, "backend", "", "store backend: file, sqlite, memory (uses config if not specified)")
	patternsCmd.PersistentFlags().StringVar(&patternsFlags.path, "store", "", "store path (uses config if not specified)")
	patternsListCmd.Flags().StringVar(&patternsFlags.technique, "technique", "", "filter by technique")
	patternsListCmd.Flags().StringVar(&patternsFlags.format, "format", "text", "output format: text, json")
	patternsEvolveCmd.Flags().IntVar(&patternsFlags.count, "count", 5, "number of variants to generate")
}

// openStore resolves the store from flags, falling back to the config
// file.
func openStore() (learner.Store, error) {
	backend, path := patternsFlags.backend, patternsFlags.path
	if backend == "" && path == "" {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return nil, err
		}
		backend, path = cfg.Learner.Store.Backend, cfg.Learner.Store.Path
	}
	return store.Open(backend, path)
}

func runPatternsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	patterns, err := st.Load(context.Background())
	if err != nil {
		return err
	}

	filtered := patterns[:0]
	for _, p := range patterns {
		if patternsFlags.technique == "" || p.Technique == patternsFlags.technique {
			filtered = append(filtered, p)
		}
	}

	if patternsFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTECHNIQUE\tCONFIDENCE\tSUCCESS\tATTEMPTS\tSOURCE\tREGEX")
	for _, p := range filtered {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%d\t%s\t%s\n",
			p.PatternID, p.Technique, p.Confidence,
			p.SuccessCount, p.TotalAttempts, p.Source, p.PatternRegex)
	}
	return w.Flush()
}

func runPatternsStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	l := learner.New(context.Background(), st, learner.DefaultConfig())
	stats := l.Statistics()

	fmt.Printf("total patterns: %d\n", stats.TotalPatterns)
	for technique, n := range stats.ByTechnique {
		fmt.Printf("  technique %-20s %d\n", technique, n)
	}
	for source, n := range stats.BySource {
		fmt.Printf("  source    %-20s %d\n", source, n)
	}
	return nil
}

func runPatternsEvolve(cmd *cobra.Command, args []string) error {
	variants := learner.EvolvePattern(args[0], patternsFlags.count)
	if len(variants) == 0 {
		fmt.Println("no variants generated")
		return nil
	}
	for i, v := range variants {
		fmt.Printf("%d: %s\n", i+1, v)
	}
	return nil
}
