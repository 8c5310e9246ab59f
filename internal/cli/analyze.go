package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ppiankov/querysmith/internal/logging"
	"github.com/ppiankov/querysmith/internal/model"
	"github.com/ppiankov/querysmith/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	intent         string
	mode           string
	analyzeTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "Build a PubMed query from a natural-language research question",
	Long: `Analyze sends the question to the configured generation provider, which
decomposes it into PICO/PEO components and proposes authoritative MeSH terms.
Each component is then resolved against the NCBI E-utilities and compiled
into a Boolean query.

Intents:
  structure  decompose the question into a search strategy (default)
  explore    broaden a vague topic into candidate questions

Precision modes:
  sensitive  (MeSH OR free text), highest recall (default)
  balanced   (MeSH AND free text) for every facet except geography
  specific   MeSH only

Example:
  querysmith analyze "Quel est l'impact de l'éducation thérapeutique sur l'observance chez les diabétiques au Bénin ?"
  querysmith analyze "vaccine hesitancy in West Africa" --intent explore
  querysmith analyze "..." --mode balanced --json report.json --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&intent, "intent", "structure", "intent (structure, explore)")
	analyzeCmd.Flags().StringVar(&mode, "mode", "", "precision mode (sensitive, balanced, specific)")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 3*time.Minute, "overall timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	in, err := model.ParseIntent(intent)
	if err != nil {
		return err
	}
	m, err := parseMode(mode, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Question: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Provider: %s (secondary: %s)\n",
			cfg.Generation.Primary.Provider, orNone(cfg.Generation.Secondary.Provider))
		fmt.Fprintf(os.Stderr, "Intent: %s, mode: %s\n\n", in, m)
	}

	p := pipeline.NewPipeline(cfg, logger)
	report, err := p.Natural(ctx, args[0], in, m)
	if err != nil {
		return errors.Wrap(err, "analyze")
	}

	if verbose {
		stats := p.Resolver().Stats()
		logger.Debugw("resolution finished",
			"cache_hits", stats.CacheHits,
			"fetched", stats.Fetched,
			"degraded", stats.Degraded,
			logging.FieldProvider, report.Generation.Provider)
	}

	if err := p.RenderReport(cmd.OutOrStdout(), report, outJSON, outMD, verbose); err != nil {
		return errors.Wrap(err, "render")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
