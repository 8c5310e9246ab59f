package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/querysmith/internal/pipeline"
)

var resolveTimeout time.Duration

// resolveCmd prints the E-utilities translation of concepts
var resolveCmd = &cobra.Command{
	Use:   "resolve <concept>...",
	Short: "Resolve concepts to PubMed query translations",
	Long: `Resolve looks each concept up in the NCBI E-utilities and prints the
translation PubMed would apply. Concepts that cannot be resolved fall back
to a quoted [All Fields] term.

Example:
  querysmith resolve "malaria" "health workers" "medication adherence"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", time.Minute, "overall timeout")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), resolveTimeout)
	defer cancel()

	r := pipeline.NewPipeline(cfg, logger).Resolver()
	out := cmd.OutOrStdout()
	for _, concept := range args {
		_, _ = fmt.Fprintf(out, "%s\n  %s\n", concept, r.Resolve(ctx, concept))
	}

	s := r.Stats()
	if s.Degraded > 0 {
		_, _ = fmt.Fprintf(out, "\n⚠ %d of %d concepts could not be resolved\n", s.Degraded, len(args))
	}
	return nil
}
