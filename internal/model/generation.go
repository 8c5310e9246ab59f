package model

// GenerationResult is the structured decomposition returned by a generation
// provider. Nullable fields are pointers so that an explicit JSON null and an
// empty string stay distinguishable.
type GenerationResult struct {
	Intent                  Intent            `json:"intent,omitempty"`
	Framework               *string           `json:"framework"`
	Explanation             string            `json:"explanation"`
	ResearchQuestionFR      *string           `json:"research_question_fr"`
	ResearchQuestionEN      *string           `json:"research_question_en"`
	ResearchQuestionComment string            `json:"research_question_comment,omitempty"`
	Geography               Geography         `json:"geography"`
	GeographyTiab           *string           `json:"geography_tiab"`
	Components              Components        `json:"components"`
	ComponentsEnglish       ComponentsEnglish `json:"components_english"`
	ResearchLevel           int               `json:"research_level,omitempty"`
}

// Geography holds the geographic qualifiers mentioned in the question
type Geography struct {
	Country   *string `json:"country"`
	Region    *string `json:"region"`
	Continent *string `json:"continent"`
}

// Components holds the facets in the question's original language
type Components struct {
	Population   *string `json:"population"`
	Intervention *string `json:"intervention"`
	Comparison   *string `json:"comparison"`
	Outcome      *string `json:"outcome"`
	Exposure     *string `json:"exposure"`
}

// ComponentsEnglish holds the English facets with their MeSH and TIAB
// sub-fields
type ComponentsEnglish struct {
	Population       *string `json:"population"`
	PopulationTiab   *string `json:"population_tiab,omitempty"`
	Intervention     *string `json:"intervention"`
	InterventionMesh *string `json:"intervention_mesh,omitempty"`
	InterventionTiab *string `json:"intervention_tiab,omitempty"`
	Comparison       *string `json:"comparison"`
	Outcome          *string `json:"outcome"`
	OutcomeMesh      *string `json:"outcome_mesh,omitempty"`
	OutcomeTiab      *string `json:"outcome_tiab,omitempty"`
	Exposure         *string `json:"exposure"`
	ExposureTiab     *string `json:"exposure_tiab,omitempty"`
}

// Str dereferences a nullable string field
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// FrameworkLabel returns the framework or "none" for explore results
func (r *GenerationResult) FrameworkLabel() string {
	if f := Str(r.Framework); f != "" {
		return f
	}
	return "none"
}
