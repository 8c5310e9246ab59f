package query

import (
	"github.com/ppiankov/querysmith/internal/mesh"
	"github.com/ppiankov/querysmith/internal/model"
)

// FacetsFromResult maps the English components of a generation result to
// facets. MeSH fields are re-checked against the whitelist.
func FacetsFromResult(r *model.GenerationResult) []model.Facet {
	if r == nil {
		return nil
	}
	ce := r.ComponentsEnglish

	return []model.Facet{
		{
			Kind:              model.FacetPopulation,
			Concept:           model.Str(ce.Population),
			SynonymExpression: model.Str(ce.PopulationTiab),
		},
		{
			Kind:                  model.FacetIntervention,
			Concept:               model.Str(ce.Intervention),
			AuthoritativeFragment: mesh.Authoritative(model.Str(ce.InterventionMesh)),
			SynonymExpression:     model.Str(ce.InterventionTiab),
		},
		{
			Kind:              model.FacetExposure,
			Concept:           model.Str(ce.Exposure),
			SynonymExpression: model.Str(ce.ExposureTiab),
		},
		{
			Kind:                  model.FacetOutcome,
			Concept:               model.Str(ce.Outcome),
			AuthoritativeFragment: mesh.Authoritative(model.Str(ce.OutcomeMesh)),
			SynonymExpression:     model.Str(ce.OutcomeTiab),
		},
		{
			Kind:    model.FacetComparison,
			Concept: model.Str(ce.Comparison),
		},
		{
			Kind:              model.FacetGeography,
			SynonymExpression: model.Str(r.GeographyTiab),
		},
	}
}
