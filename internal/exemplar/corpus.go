package exemplar

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/querysmith/internal/model"
)

// NullReformulationID is the exemplar demonstrating a well-formed question
// that needs no reformulation. It is always part of structure prompts.
const NullReformulationID = "J"

//go:embed corpus.json
var embedded []byte

var (
	loadOnce sync.Once
	loaded   []model.Exemplar
	loadErr  error
)

// Corpus returns the embedded exemplar corpus, parsed on first use
func Corpus() ([]model.Exemplar, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Load(bytes.NewReader(embedded))
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return slices.Clone(loaded), nil
}

// Load decodes and validates an exemplar corpus from r
func Load(r io.Reader) ([]model.Exemplar, error) {
	var corpus []model.Exemplar
	if err := json.NewDecoder(r).Decode(&corpus); err != nil {
		return nil, errors.Wrap(err, "decode exemplar corpus")
	}
	if len(corpus) == 0 {
		return nil, errors.New("exemplar corpus is empty")
	}

	seen := make(map[string]bool, len(corpus))
	for i, ex := range corpus {
		if ex.ID == "" {
			return nil, errors.Newf("exemplar %d has no id", i)
		}
		if seen[ex.ID] {
			return nil, errors.Newf("duplicate exemplar id %q", ex.ID)
		}
		seen[ex.ID] = true
		if ex.Intent != model.IntentExplore && ex.Intent != model.IntentStructure {
			return nil, errors.Newf("exemplar %s has invalid intent %q", ex.ID, ex.Intent)
		}
		if !json.Valid(ex.ExampleJSON) {
			return nil, errors.Newf("exemplar %s has invalid example_json", ex.ID)
		}
	}
	return corpus, nil
}
