package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecisionMode(t *testing.T) {
	tests := map[string]PrecisionMode{
		"":           DefaultMode,
		"sensitive":  ModeSensitive,
		" Balanced ": ModeBalanced,
		"SPECIFIC":   ModeSpecific,
	}
	for in, want := range tests {
		got, err := ParsePrecisionMode(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got)
	}

	_, err := ParsePrecisionMode("exhaustive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"exhaustive"`)
}

func TestParseIntent(t *testing.T) {
	got, err := ParseIntent("")
	require.NoError(t, err)
	assert.Equal(t, IntentStructure, got)

	got, err = ParseIntent("Explore")
	require.NoError(t, err)
	assert.Equal(t, IntentExplore, got)

	_, err = ParseIntent("summarize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supported: explore, structure")
}

func TestFacetIsEmpty(t *testing.T) {
	assert.True(t, Facet{Kind: FacetPopulation, Concept: "  "}.IsEmpty())
	assert.False(t, Facet{Kind: FacetGeography, SynonymExpression: "Benin"}.IsEmpty())
}
