// Package query compiles research facets into a Boolean PubMed query.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/querysmith/internal/logging"
	"github.com/ppiankov/querysmith/internal/mesh"
	"github.com/ppiankov/querysmith/internal/model"
	"github.com/ppiankov/querysmith/internal/worker"
)

const (
	tiabTag          = "[Title/Abstract]"
	facetSeparator   = "\nAND "
	populationSep    = ","
	geographySep     = " OR "
	defaultResolvers = 4
)

// FragmentResolver maps a concept to a search fragment. Implementations
// must always return a usable fragment.
type FragmentResolver interface {
	Resolve(ctx context.Context, concept string) string
}

// Compiler assembles facets into a query string
type Compiler struct {
	resolver FragmentResolver
	workers  int
	logger   *zap.SugaredLogger
}

// NewCompiler creates a compiler. workers bounds parallel concept
// resolution; values <= 0 use a small default.
func NewCompiler(resolver FragmentResolver, workers int, logger *zap.SugaredLogger) *Compiler {
	if workers <= 0 {
		workers = defaultResolvers
	}
	return &Compiler{
		resolver: resolver,
		workers:  workers,
		logger:   logging.Component(logger, "query.compiler"),
	}
}

// plan is the normalized input for one facet kind
type plan struct {
	kind  model.FacetKind
	facet model.Facet
	items []string // population alternatives, or the single concept
}

// Compile builds the query for facets under mode. With no usable facet it
// returns "" and ErrInsufficientFacets.
func (c *Compiler) Compile(ctx context.Context, facets []model.Facet, mode model.PrecisionMode) (string, error) {
	mode, err := model.ParsePrecisionMode(string(mode))
	if err != nil {
		return "", err
	}

	plans := c.plan(ctx, facets)
	if len(plans) == 0 {
		return "", ErrInsufficientFacets
	}

	resolved := c.resolveAll(ctx, plans)
	// unfinished lookups were filled with fallbacks the resolver never counted
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "resolve concepts")
	}

	blocks := make([]string, 0, len(plans))
	for _, p := range plans {
		blocks = append(blocks, buildFacet(p, resolved, mode))
	}

	query := strings.Join(blocks, facetSeparator)
	logging.FromContext(ctx, c.logger).Debugw("compiled query",
		logging.FieldMode, string(mode),
		logging.FieldCount, len(blocks),
	)
	return query, nil
}

// plan keeps the first usable facet of each kind, in the fixed facet order
func (c *Compiler) plan(ctx context.Context, facets []model.Facet) []plan {
	byKind := make(map[model.FacetKind]model.Facet, len(facets))
	for _, f := range facets {
		if _, seen := byKind[f.Kind]; seen || f.IsEmpty() {
			continue
		}
		f = normalize(f)
		if f.AuthoritativeFragment != "" && mesh.Authoritative(f.AuthoritativeFragment) == "" {
			logging.FromContext(ctx, c.logger).Warnw("dropping non-whitelisted authoritative fragment",
				"facet", string(f.Kind),
			)
			f.AuthoritativeFragment = ""
		}
		byKind[f.Kind] = f
	}

	var plans []plan
	for _, kind := range model.FacetOrder {
		f, ok := byKind[kind]
		if !ok || !included(f) {
			continue
		}

		p := plan{kind: kind, facet: f}
		switch kind {
		case model.FacetPopulation:
			p.items = splitPopulation(f.Concept)
			if len(p.items) == 0 {
				if f.AuthoritativeFragment == "" {
					continue
				}
				p.items = []string{""}
			}
		case model.FacetGeography:
			p.items = splitGeography(f.SynonymExpression)
			if len(p.items) == 0 {
				continue
			}
		default:
			p.items = []string{f.Concept}
		}
		plans = append(plans, p)
	}
	return plans
}

// included applies the per-facet inclusion rules
func included(f model.Facet) bool {
	hasConcept := f.Concept != ""
	hasFragment := f.AuthoritativeFragment != ""

	switch f.Kind {
	case model.FacetPopulation, model.FacetIntervention, model.FacetOutcome:
		return hasConcept || hasFragment
	case model.FacetExposure, model.FacetComparison:
		return hasConcept
	case model.FacetGeography:
		return f.SynonymExpression != ""
	default:
		return false
	}
}

// resolveAll resolves every distinct concept lacking an authoritative
// fragment. Geography is never resolved.
func (c *Compiler) resolveAll(ctx context.Context, plans []plan) map[string]string {
	seen := make(map[string]bool)
	var concepts []string
	for _, p := range plans {
		if p.kind == model.FacetGeography || p.facet.AuthoritativeFragment != "" {
			continue
		}
		for _, item := range p.items {
			if item != "" && !seen[item] {
				seen[item] = true
				concepts = append(concepts, item)
			}
		}
	}

	fragments := worker.Run(ctx, c.workers, concepts, func(ctx context.Context, concept string) string {
		return c.resolver.Resolve(ctx, concept)
	})

	resolved := make(map[string]string, len(concepts))
	for i, concept := range concepts {
		fragment := fragments[i]
		if fragment == "" {
			fragment = mesh.Fallback(concept)
		}
		resolved[concept] = fragment
	}
	return resolved
}

// buildFacet renders one facet group
func buildFacet(p plan, resolved map[string]string, mode model.PrecisionMode) string {
	if p.kind == model.FacetGeography {
		terms := make([]string, 0, len(p.items))
		for _, t := range p.items {
			terms = append(terms, fmt.Sprintf(`"%s"%s`, t, tiabTag))
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	}

	blocks := make([]string, 0, len(p.items))
	for _, item := range p.items {
		m := p.facet.AuthoritativeFragment
		if m == "" {
			m = resolved[item]
		}
		blocks = append(blocks, BuildBlock(m, titleAbstract(item, p.facet.SynonymExpression), mode))
	}
	if len(blocks) == 1 {
		return blocks[0]
	}
	return "(" + strings.Join(blocks, " OR ") + ")"
}

// BuildBlock combines an authoritative fragment m with a title/abstract
// expression t. An empty t leaves only (m).
func BuildBlock(m, t string, mode model.PrecisionMode) string {
	if t == "" {
		return "(" + m + ")"
	}
	switch mode {
	case model.ModeBalanced:
		// AND can be narrower than specific mode when t is narrow; kept as is.
		return "(" + m + " AND " + t + ")"
	case model.ModeSpecific:
		return "(" + m + ")"
	default:
		return "(" + m + " OR " + t + ")"
	}
}

// titleAbstract builds the free-text part of a block
func titleAbstract(concept, synonyms string) string {
	if synonyms != "" {
		return "((" + synonyms + ")" + tiabTag + ")"
	}
	if concept != "" {
		return fmt.Sprintf(`"%s"%s`, concept, tiabTag)
	}
	return ""
}

func normalize(f model.Facet) model.Facet {
	f.Concept = strings.TrimSpace(strings.ReplaceAll(f.Concept, `"`, ""))
	f.AuthoritativeFragment = strings.TrimSpace(f.AuthoritativeFragment)
	f.SynonymExpression = strings.TrimSpace(f.SynonymExpression)
	return f
}

// splitPopulation returns the non-empty sub-concepts, or nil when there are none
func splitPopulation(concept string) []string {
	var items []string
	for _, part := range strings.Split(concept, populationSep) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func splitGeography(expr string) []string {
	var terms []string
	for _, t := range strings.Split(expr, geographySep) {
		t = strings.Trim(strings.TrimSpace(t), `"`)
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Balanced reports whether parentheses in q are balanced, never close before
// opening and every quoted phrase is closed. Parentheses inside quotes are
// ignored. Concepts and synonym lists are not sanitized, so callers use this
// to detect malformed input that reached the query.
func Balanced(q string) bool {
	depth := 0
	quoted := false
	for _, r := range q {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !quoted
}
