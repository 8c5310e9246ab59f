package cli

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ppiankov/querysmith/internal/pipeline"
	"github.com/ppiankov/querysmith/internal/query"
)

var (
	level        int
	population   string
	intervention string
	outcome      string
	comparison   string
	buildTimeout time.Duration
)

// buildCmd represents the guided build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a PubMed query from guided PICO fields",
	Long: `Build compiles a query from components the researcher provides directly.
No generation provider is involved.

Levels:
  1  exploring   population, optional intervention
  2  question    population and outcome, optional intervention
  3  protocol    population, intervention and outcome, optional comparison

Example:
  querysmith build --level 1 --population "adolescents in Senegal"
  querysmith build --level 2 --population "pregnant women, Burkina Faso" --outcome "anemia"
  querysmith build --level 3 --population "type 2 diabetes" --intervention "therapeutic education" \
      --outcome "medication adherence" --comparison "usual care" --mode balanced`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().IntVar(&level, "level", 1, "guided level (1, 2, 3)")
	buildCmd.Flags().StringVar(&population, "population", "", "population, comma separates sub-concepts (required)")
	buildCmd.Flags().StringVar(&intervention, "intervention", "", "intervention or exposure")
	buildCmd.Flags().StringVar(&outcome, "outcome", "", "outcome (levels 2 and 3)")
	buildCmd.Flags().StringVar(&comparison, "comparison", "", "comparison (level 3)")
	buildCmd.Flags().StringVar(&mode, "mode", "", "precision mode (sensitive, balanced, specific)")
	buildCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	buildCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", time.Minute, "overall timeout")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	lvl, err := query.ParseLevel(level)
	if err != nil {
		return err
	}
	m, err := parseMode(mode, cfg)
	if err != nil {
		return err
	}

	in := query.GuidedInput{
		Level:        lvl,
		Population:   population,
		Intervention: intervention,
		Outcome:      outcome,
		Comparison:   comparison,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), buildTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg, logger)
	report, err := p.Guided(ctx, in, m)
	if err != nil {
		return errors.Wrap(err, "build")
	}
	return p.RenderReport(cmd.OutOrStdout(), report, outJSON, outMD, verbose)
}
