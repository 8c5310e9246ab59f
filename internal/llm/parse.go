package llm

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/querysmith/internal/mesh"
	"github.com/ppiankov/querysmith/internal/model"
)

// StripFences removes a surrounding ```json or ``` markdown fence
func StripFences(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// ParseResult decodes a completion into a GenerationResult. Decoding is
// strict: unknown fields and trailing data are rejected. MeSH fields that
// are not verbatim whitelist blocks are nulled rather than rejected.
func ParseResult(text string) (*model.GenerationResult, error) {
	clean := StripFences(text)
	if clean == "" {
		return nil, errors.Wrap(ErrMalformedResult, "empty completion")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.DisallowUnknownFields()

	var res model.GenerationResult
	if err := dec.Decode(&res); err != nil {
		return nil, errors.Wrapf(ErrMalformedResult, "decode: %v", err)
	}
	if dec.More() {
		return nil, errors.Wrap(ErrMalformedResult, "trailing data after JSON object")
	}

	if err := validate(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func validate(res *model.GenerationResult) error {
	switch res.Intent {
	case "", model.IntentExplore, model.IntentStructure:
	default:
		return errors.Wrapf(ErrMalformedResult, "unknown intent %q", res.Intent)
	}
	if strings.TrimSpace(model.Str(res.ComponentsEnglish.Population)) == "" {
		return errors.Wrap(ErrMalformedResult, "components_english.population is empty")
	}

	ce := &res.ComponentsEnglish
	for _, f := range []**string{&ce.InterventionMesh, &ce.OutcomeMesh} {
		if *f != nil && mesh.Authoritative(**f) == "" {
			*f = nil
		}
	}
	return nil
}
