package model

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// FacetKind names a research dimension
type FacetKind string

const (
	FacetPopulation   FacetKind = "population"
	FacetIntervention FacetKind = "intervention"
	FacetExposure     FacetKind = "exposure"
	FacetOutcome      FacetKind = "outcome"
	FacetComparison   FacetKind = "comparison"
	FacetGeography    FacetKind = "geography"
)

// FacetOrder is the fixed order in which facets are joined in a query
var FacetOrder = []FacetKind{
	FacetPopulation,
	FacetIntervention,
	FacetExposure,
	FacetOutcome,
	FacetComparison,
	FacetGeography,
}

// Facet is one research dimension with up to three representations.
// Empty strings mean "absent".
type Facet struct {
	Kind FacetKind `json:"kind"`

	// Concept is the plain human term (e.g. "children with obesity")
	Concept string `json:"concept,omitempty"`

	// AuthoritativeFragment is a whitelisted MeSH block, copied verbatim
	AuthoritativeFragment string `json:"authoritative_fragment,omitempty"`

	// SynonymExpression is an "OR"-joined list of title/abstract synonyms
	SynonymExpression string `json:"synonym_expression,omitempty"`
}

// IsEmpty reports whether the facet carries no representation at all
func (f Facet) IsEmpty() bool {
	return strings.TrimSpace(f.Concept) == "" &&
		strings.TrimSpace(f.AuthoritativeFragment) == "" &&
		strings.TrimSpace(f.SynonymExpression) == ""
}

// PrecisionMode governs how authoritative and free-text signals combine
type PrecisionMode string

const (
	ModeSensitive PrecisionMode = "sensitive" // (M OR T)
	ModeBalanced  PrecisionMode = "balanced"  // (M AND T)
	ModeSpecific  PrecisionMode = "specific"  // (M)
)

// DefaultMode is used when no mode is configured
const DefaultMode = ModeSensitive

// ParsePrecisionMode parses a mode name; empty input yields the default
func ParsePrecisionMode(s string) (PrecisionMode, error) {
	switch PrecisionMode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMode, nil
	case ModeSensitive:
		return ModeSensitive, nil
	case ModeBalanced:
		return ModeBalanced, nil
	case ModeSpecific:
		return ModeSpecific, nil
	default:
		return "", errors.Newf("unknown precision mode: %q (supported: sensitive, balanced, specific)", s)
	}
}

// Intent is the kind of help the researcher asks for
type Intent string

const (
	IntentExplore   Intent = "explore"
	IntentStructure Intent = "structure"
)

// ParseIntent parses an intent name; empty input yields IntentStructure
func ParseIntent(s string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case "", IntentStructure:
		return IntentStructure, nil
	case IntentExplore:
		return IntentExplore, nil
	default:
		return "", errors.Newf("unknown intent: %q (supported: explore, structure)", s)
	}
}
