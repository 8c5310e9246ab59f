package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/querysmith/internal/exemplar"
	"github.com/ppiankov/querysmith/internal/model"
)

var showJSON bool

// examplesCmd shows which demonstrations a question would be given
var examplesCmd = &cobra.Command{
	Use:   "examples <question>",
	Short: "Show the exemplars selected for a question",
	Long: `Examples prints the tags detected in the question and the few-shot
exemplars that analyze would place in the prompt. No provider is called.

Example:
  querysmith examples "prévalence du paludisme chez les enfants au Mali"
  querysmith examples "burnout among nurses" --intent explore --full`,
	Args: cobra.ExactArgs(1),
	RunE: runExamples,
}

func init() {
	rootCmd.AddCommand(examplesCmd)

	examplesCmd.Flags().StringVar(&intent, "intent", "structure", "intent (structure, explore)")
	examplesCmd.Flags().BoolVar(&showJSON, "full", false, "print the formatted demonstration block")
}

func runExamples(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	in, err := model.ParseIntent(intent)
	if err != nil {
		return err
	}

	corpus, err := exemplar.Corpus()
	if err != nil {
		return err
	}
	selected := exemplar.Select(args[0], in, corpus, cfg.Exemplars.K)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Tags: %s\n\n", strings.Join(exemplar.TargetTags(args[0], in), ", "))
	for _, ex := range selected {
		fw := exemplar.Framework(ex)
		if fw == "" {
			fw = "-"
		}
		_, _ = fmt.Fprintf(out, "  %-3s %-9s %-7s %s\n", ex.ID, ex.Intent, fw, ex.QuestionFR)
	}
	if showJSON {
		_, _ = fmt.Fprintf(out, "\n%s\n", exemplar.Format(selected))
	}
	return nil
}
