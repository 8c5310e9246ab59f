package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/querysmith/internal/analyze"
	"github.com/ppiankov/querysmith/internal/cache"
	"github.com/ppiankov/querysmith/internal/llm"
	"github.com/ppiankov/querysmith/internal/logging"
	"github.com/ppiankov/querysmith/internal/mesh"
	"github.com/ppiankov/querysmith/internal/model"
	"github.com/ppiankov/querysmith/internal/query"
	"github.com/ppiankov/querysmith/internal/worker"
)

// Analyzer decomposes a natural-language question
type Analyzer interface {
	Analyze(ctx context.Context, question string, intent model.Intent) (*analyze.Analysis, error)
}

// Compiler turns facets into a Boolean query
type Compiler interface {
	Compile(ctx context.Context, facets []model.Facet, mode model.PrecisionMode) (string, error)
}

// Pipeline wires analysis, resolution and compilation into the two entry
// points: a natural-language question and the guided form
type Pipeline struct {
	analyzer    Analyzer
	analyzerErr error
	compiler    Compiler
	resolver    *mesh.Resolver
	renderer    *Renderer
	config      *model.Config
	logger      *zap.SugaredLogger
	now         func() time.Time
}

const ncbiKeyedRate = 10

// NewPipeline creates a pipeline with the given configuration. A missing or
// broken primary provider only disables the natural path; the guided path
// needs no provider.
func NewPipeline(cfg *model.Config, logger *zap.SugaredLogger) *Pipeline {
	logger = logging.OrNop(logger)

	limiter := worker.NewLimiter(cfg.Terminology.RequestsPerSecond, cfg.Terminology.Burst)
	// NCBI allows 10 requests/s with an API key
	if cfg.Terminology.APIKey != "" && cfg.Terminology.RequestsPerSecond < ncbiKeyedRate {
		if host, err := worker.HostOf(cfg.Terminology.BaseURL); err == nil {
			limiter.SetHostRate(host, ncbiKeyedRate, int(ncbiKeyedRate))
		}
	}
	resolver := mesh.NewResolver(mesh.Options{
		Terminology: cfg.Terminology,
		HTTP:        cfg.HTTP,
		Cache:       cache.NewMemoryCache(cfg.Terminology.CacheTTL, 10*time.Minute),
		Limiter:     limiter,
		Logger:      logger,
	})

	p := &Pipeline{
		compiler: query.NewCompiler(resolver, cfg.Concurrency.Workers, logger),
		resolver: resolver,
		renderer: NewRenderer(),
		config:   cfg,
		logger:   logging.Component(logger, "pipeline"),
		now:      time.Now,
	}
	p.analyzer, p.analyzerErr = newAnalyzer(cfg, limiter, logger)
	if p.analyzerErr != nil {
		p.logger.Debugw("natural-language path disabled", logging.FieldError, p.analyzerErr)
	}
	return p
}

func newAnalyzer(cfg *model.Config, limiter *worker.Limiter, logger *zap.SugaredLogger) (Analyzer, error) {
	gen := cfg.Generation

	primaryCfg := llm.ConfigFromModel(gen.Primary, gen, cfg.HTTP)
	primaryCfg.Logger = logger
	primary, err := llm.NewProvider(primaryCfg)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, errors.WithHint(errors.New("no primary generation provider configured"),
			"set generation.primary.provider, or use the guided build command")
	}

	secondaryCfg := llm.ConfigFromModel(gen.Secondary, gen, cfg.HTTP)
	secondaryCfg.Logger = logger
	secondary, err := llm.NewProvider(secondaryCfg)
	if err != nil {
		logger.Warnw("secondary provider disabled",
			logging.FieldProvider, gen.Secondary.Provider,
			logging.FieldError, err)
		secondary = nil
	}

	a, err := analyze.New(analyze.Options{
		Primary:         primary,
		Secondary:       secondary,
		K:               cfg.Exemplars.K,
		MaxTokens:       gen.MaxTokens,
		Temperature:     gen.Temperature,
		PrimaryAttempts: gen.PrimaryAttempts,
		Backoff:         gen.Backoff,
		Limiter:         limiter,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// New creates a pipeline from explicit parts. analyzer may be nil when only
// the guided path is used.
func New(analyzer Analyzer, compiler Compiler, cfg *model.Config, logger *zap.SugaredLogger) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	p := &Pipeline{
		analyzer: analyzer,
		compiler: compiler,
		renderer: NewRenderer(),
		config:   cfg,
		logger:   logging.Component(logger, "pipeline"),
		now:      time.Now,
	}
	if analyzer == nil {
		p.analyzerErr = errors.New("no analyzer configured")
	}
	return p
}

// Resolver returns the concept resolver, or nil for pipelines built with New
func (p *Pipeline) Resolver() *mesh.Resolver {
	return p.resolver
}

// Natural builds a query from a natural-language question
func (p *Pipeline) Natural(ctx context.Context, question string, intent model.Intent, mode model.PrecisionMode) (*model.Report, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.WithHint(errors.New("empty question"), "pass the research question as an argument")
	}
	if p.analyzer == nil {
		return nil, p.analyzerErr
	}

	analysis, err := p.analyzer.Analyze(ctx, question, intent)
	if err != nil {
		return nil, err
	}

	facets := query.FacetsFromResult(analysis.Result)
	q, degraded, err := p.compile(ctx, facets, mode)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Question: question,
		Path:     model.PathNatural,
		Intent:   analysis.Result.Intent,
		Mode:     mode,
		Analysis: analysis.Result,
		Generation: &model.GenerationMeta{
			RequestID: analysis.RequestID,
			Provider:  analysis.Provider,
			Attempts:  analysis.Attempts,
			Exemplars: analysis.Exemplars,
		},
		Facets:      nonEmpty(facets),
		Query:       q,
		SearchURL:   query.SearchURL(q),
		GeneratedAt: p.now().UTC(),
	}
	report.Signals = signals(report, degraded)
	return report, nil
}

// Guided builds a query from the guided form
func (p *Pipeline) Guided(ctx context.Context, in query.GuidedInput, mode model.PrecisionMode) (*model.Report, error) {
	question, err := in.Question()
	if err != nil {
		return nil, err
	}

	facets := in.Facets()
	q, degraded, err := p.compile(ctx, facets, mode)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Question:    question,
		Path:        model.PathGuided,
		Level:       int(in.Level),
		Mode:        mode,
		Facets:      nonEmpty(facets),
		Query:       q,
		SearchURL:   query.SearchURL(q),
		GeneratedAt: p.now().UTC(),
	}
	report.Signals = signals(report, degraded)
	return report, nil
}

// RenderReport writes the report to the requested files and prints the
// summary to w
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return errors.Wrap(err, "render JSON")
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return errors.Wrap(err, "render markdown")
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(w, report)
	return nil
}

// compile runs the compiler while counting concepts that fell back to an
// unresolved fragment
func (p *Pipeline) compile(ctx context.Context, facets []model.Facet, mode model.PrecisionMode) (string, int64, error) {
	ctx, degraded := mesh.TrackDegraded(ctx)
	q, err := p.compiler.Compile(ctx, facets, mode)
	if err != nil {
		return "", 0, errors.Wrap(err, "compile query")
	}
	return q, degraded.Load(), nil
}

func nonEmpty(facets []model.Facet) []model.Facet {
	out := make([]model.Facet, 0, len(facets))
	for _, f := range facets {
		if !f.IsEmpty() {
			out = append(out, f)
		}
	}
	return out
}

// signals derives diagnostics from a finished report
func signals(r *model.Report, degraded int64) []model.Signal {
	var out []model.Signal

	if r.Analysis != nil && r.Analysis.ResearchQuestionEN != nil {
		out = append(out, model.Signal{
			Type:        model.SignalReformulated,
			Severity:    model.SeverityInfo,
			Description: "The question was reformulated: " + *r.Analysis.ResearchQuestionEN,
		})
	}

	if degraded > 0 {
		out = append(out, model.Signal{
			Type:        model.SignalResolutionDegraded,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d concept(s) could not be resolved and are searched in all fields", degraded),
		})
	}

	hasMeSH := false
	for _, f := range r.Facets {
		if f.AuthoritativeFragment != "" {
			hasMeSH = true
			break
		}
	}
	if !hasMeSH && !strings.Contains(r.Query, "[MeSH") {
		out = append(out, model.Signal{
			Type:        model.SignalNoMeSH,
			Severity:    model.SeverityInfo,
			Description: "No MeSH heading was found; the query relies on free-text terms",
		})
	}

	if !query.Balanced(r.Query) {
		out = append(out, model.Signal{
			Type:        model.SignalUnbalanced,
			Severity:    model.SeverityCritical,
			Description: "Query parentheses or quotes are not balanced",
		})
	}
	return out
}
