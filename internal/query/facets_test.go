package query

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/querysmith/internal/mesh"
	"github.com/ppiankov/querysmith/internal/model"
)

func ptr(s string) *string { return &s }

func TestFacetsFromResult(t *testing.T) {
	kap, _ := mesh.Lookup("M-KAP")
	result := &model.GenerationResult{
		Framework:     ptr("PEO"),
		GeographyTiab: ptr(`Benin OR "West Africa" OR "Sub-Saharan Africa"`),
		ComponentsEnglish: model.ComponentsEnglish{
			Population:       ptr("Physicians, General Practitioners"),
			PopulationTiab:   ptr("clinicians OR general practitioners OR physicians"),
			Exposure:         ptr("hyperkalemia management"),
			ExposureTiab:     ptr("hyperkalemia OR potassium disorders"),
			Outcome:          ptr("knowledge"),
			OutcomeMesh:      ptr(kap),
			InterventionMesh: ptr(`"Hyperkalemia"[MeSH]`),
		},
	}

	facets := FacetsFromResult(result)
	require.Len(t, facets, 6)

	byKind := map[model.FacetKind]model.Facet{}
	for _, f := range facets {
		byKind[f.Kind] = f
	}
	assert.Equal(t, kap, byKind[model.FacetOutcome].AuthoritativeFragment)
	assert.Empty(t, byKind[model.FacetIntervention].AuthoritativeFragment, "non-whitelisted MeSH is dropped")
	assert.Equal(t, `Benin OR "West Africa" OR "Sub-Saharan Africa"`, byKind[model.FacetGeography].SynonymExpression)

	q, err := NewCompiler(newFakeResolver(), 2, nil).Compile(context.Background(), facets, model.ModeSensitive)
	require.NoError(t, err)

	groups := strings.Split(q, "\nAND ")
	require.Len(t, groups, 4, "population, exposure, outcome, geography")
	assert.Contains(t, groups[0], "Physicians")
	assert.Contains(t, groups[1], "hyperkalemia")
	assert.Contains(t, groups[2], kap)
	assert.Contains(t, groups[3], `"West Africa"[Title/Abstract]`)
	assert.True(t, Balanced(q))
}

func TestFacetsFromResult_Nil(t *testing.T) {
	assert.Nil(t, FacetsFromResult(nil))
}

func TestSearchURL(t *testing.T) {
	q := `("a"[MeSH] OR "a"[Title/Abstract])` + "\nAND " + `("b")`
	u := SearchURL(q)

	assert.True(t, strings.HasPrefix(u, "https://pubmed.ncbi.nlm.nih.gov/?term="))
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, q, parsed.Query().Get("term"))
}
