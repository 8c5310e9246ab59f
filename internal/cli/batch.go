package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ppiankov/querysmith/internal/model"
	"github.com/ppiankov/querysmith/internal/pipeline"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	withMarkdown bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Build queries for many questions from a file in parallel",
	Long: `Batch processes multiple research questions concurrently:
- Read questions from input file (one per line, # starts a comment)
- Process questions in parallel with configurable worker count
- Generate a JSON report (and optionally Markdown) for each question

Example:
  querysmith batch questions.txt
  querysmith batch questions.txt --concurrency 4 --output-dir ./strategies
  querysmith batch questions.txt --mode specific --timeout 30m --md`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./querysmith-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 15*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&intent, "intent", "structure", "intent (structure, explore)")
	batchCmd.Flags().StringVar(&mode, "mode", "", "precision mode (sensitive, balanced, specific)")
	batchCmd.Flags().BoolVar(&withMarkdown, "md", false, "also write Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

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
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  querysmith batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Provider:     %s\n", cfg.Generation.Primary.Provider)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	p := pipeline.NewPipeline(cfg, logger)
	processor := pipeline.NewBatchProcessor(p, concurrency, in, m)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return errors.Wrap(err, "process file")
	}

	renderer := pipeline.NewRenderer()
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ [%d] %s: %v\n", result.Index+1, result.Question, result.Error)
			if hint := errors.FlattenHints(result.Error); hint != "" {
				fmt.Fprintf(os.Stderr, "    hint: %s\n", hint)
			}
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(result.Question))
		jsonPath := filepath.Join(outputDir, slug+".json")
		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			result.Error = err
			fmt.Fprintf(os.Stderr, "✗ [%d] failed to write JSON: %v\n", result.Index+1, err)
			continue
		}
		if withMarkdown {
			if err := renderer.RenderMarkdown(result.Report, filepath.Join(outputDir, slug+".md")); err != nil {
				result.Error = err
				fmt.Fprintf(os.Stderr, "✗ [%d] failed to write Markdown: %v\n", result.Index+1, err)
				continue
			}
		}

		fmt.Fprintf(os.Stderr, "✓ [%d] %s\n", result.Index+1, jsonPath)
	}

	ok, failed := pipeline.Summary(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d questions\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", ok)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if ok == 0 && failed > 0 {
		return errors.Newf("all %d questions failed", failed)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "",
	"\"", "",
	"'", "",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a question into a short file name stem
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Trim(s, "-_.")

	// Limit length
	if r := []rune(s); len(r) > 60 {
		s = strings.TrimRight(string(r[:60]), "-_.")
	}
	if s == "" {
		return "question"
	}
	return s
}
