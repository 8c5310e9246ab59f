package model

import "encoding/json"

// Exemplar is a labelled few-shot demonstration. Exemplars are loaded once
// and never mutated.
type Exemplar struct {
	ID          string          `json:"id"`
	Intent      Intent          `json:"intent"`
	Tags        []string        `json:"tags"`
	QuestionFR  string          `json:"question_fr"`
	ExampleJSON json.RawMessage `json:"example_json"`
}

// HasTag reports whether the exemplar carries tag
func (e Exemplar) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
