package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/querysmith/internal/model"
)

// Renderer writes reports as JSON, Markdown and a console summary
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# PubMed search strategy\n\n")
	fmt.Fprintf(&b, "**Question:** %s\n\n", report.Question)

	var meta []string
	if report.Intent != "" {
		meta = append(meta, "intent `"+string(report.Intent)+"`")
	}
	if report.Level > 0 {
		meta = append(meta, fmt.Sprintf("level %d", report.Level))
	}
	if report.Analysis != nil && report.Analysis.Framework != nil {
		meta = append(meta, "framework "+*report.Analysis.Framework)
	}
	meta = append(meta, "mode `"+string(report.Mode)+"`")
	b.WriteString(strings.Join(meta, " · ") + "\n\n")

	if a := report.Analysis; a != nil && (a.ResearchQuestionFR != nil || a.ResearchQuestionEN != nil) {
		b.WriteString("## Suggested reformulation\n\n")
		if a.ResearchQuestionFR != nil {
			fmt.Fprintf(&b, "- FR: %s\n", *a.ResearchQuestionFR)
		}
		if a.ResearchQuestionEN != nil {
			fmt.Fprintf(&b, "- EN: %s\n", *a.ResearchQuestionEN)
		}
		if a.ResearchQuestionComment != "" {
			fmt.Fprintf(&b, "\n_%s_\n", a.ResearchQuestionComment)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Query\n\n```\n" + report.Query + "\n```\n\n")
	fmt.Fprintf(&b, "[Open in PubMed](%s)\n\n", report.SearchURL)

	if len(report.Facets) > 0 {
		b.WriteString("## Facets\n\n")
		b.WriteString("| Facet | Concept | MeSH | Synonyms |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, f := range report.Facets {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				f.Kind, cell(f.Concept), cell(f.AuthoritativeFragment), cell(f.SynonymExpression))
		}
		b.WriteString("\n")
	}

	if len(report.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
		}
		b.WriteString("\n")
	}

	if g := report.Generation; g != nil {
		fmt.Fprintf(&b, "---\n_Generated by %s (request %s, exemplars %s)_\n",
			g.Provider, g.RequestID, strings.Join(g.Exemplars, ", "))
	}
	return b.String()
}

// RenderSummary prints a short console summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	_, _ = fmt.Fprintf(w, "\nQuestion: %s\n", report.Question)
	if a := report.Analysis; a != nil && a.Framework != nil {
		_, _ = fmt.Fprintf(w, "Framework: %s\n", *a.Framework)
	}
	_, _ = fmt.Fprintf(w, "Mode: %s\n\n", report.Mode)
	_, _ = fmt.Fprintf(w, "%s\n\n", report.Query)
	_, _ = fmt.Fprintf(w, "PubMed: %s\n", report.SearchURL)
	for _, s := range report.Signals {
		if s.Severity == model.SeverityInfo {
			continue
		}
		_, _ = fmt.Fprintf(w, "⚠ %s\n", s.Description)
	}
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
