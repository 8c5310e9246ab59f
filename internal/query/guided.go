package query

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/querysmith/internal/model"
)

// Level is how far along the researcher is on the guided path
type Level int

const (
	LevelExploring Level = 1 // population, optional intervention
	LevelQuestion  Level = 2 // population + outcome
	LevelProtocol  Level = 3 // full PICO
)

// GuidedInput is the form filled in on the guided path
type GuidedInput struct {
	Level        Level
	Population   string
	Intervention string
	Outcome      string
	Comparison   string
}

func (l Level) String() string {
	switch l {
	case LevelExploring:
		return "Level 1"
	case LevelQuestion:
		return "Level 2"
	case LevelProtocol:
		return "Level 3"
	default:
		return fmt.Sprintf("Level %d", int(l))
	}
}

// ParseLevel accepts 1, 2 or 3
func ParseLevel(n int) (Level, error) {
	if n < int(LevelExploring) || n > int(LevelProtocol) {
		return 0, errors.Newf("unknown level %d (supported: 1, 2, 3)", n)
	}
	return Level(n), nil
}

// Validate checks the facets required by the level. Outcome is ignored on
// level 1 and comparison below level 3.
func (in GuidedInput) Validate() error {
	missing := func(name string) error {
		return errors.WithHintf(errors.Wrapf(ErrMissingFacet, "%s", name),
			"%s requires %s", in.Level, required(in.Level))
	}

	if len(splitPopulation(strings.ReplaceAll(in.Population, `"`, ""))) == 0 {
		return missing("population")
	}
	switch in.Level {
	case LevelExploring:
		return nil
	case LevelQuestion:
		if strings.TrimSpace(in.Outcome) == "" {
			return missing("outcome")
		}
		return nil
	case LevelProtocol:
		if strings.TrimSpace(in.Intervention) == "" {
			return missing("intervention")
		}
		if strings.TrimSpace(in.Outcome) == "" {
			return missing("outcome")
		}
		return nil
	default:
		_, err := ParseLevel(int(in.Level))
		return err
	}
}

func required(l Level) string {
	switch l {
	case LevelQuestion:
		return "population and outcome"
	case LevelProtocol:
		return "population, intervention and outcome"
	default:
		return "population"
	}
}

// Question phrases the guided input as a research question
func (in GuidedInput) Question() (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	p := strings.TrimSpace(in.Population)
	i := strings.TrimSpace(in.Intervention)
	o := strings.TrimSpace(in.Outcome)
	c := strings.TrimSpace(in.Comparison)

	switch in.Level {
	case LevelExploring:
		if i != "" {
			return fmt.Sprintf("In %s, what are the effects of %s?", p, i), nil
		}
		return fmt.Sprintf("In %s, what does the literature say?", p), nil
	case LevelQuestion:
		if i != "" {
			return fmt.Sprintf("In %s, does %s improve/reduce %s?", p, i, o), nil
		}
		return fmt.Sprintf("In %s, what is %s?", p, o), nil
	default:
		if c != "" {
			return fmt.Sprintf("In %s, does %s compared to %s improve/reduce %s?", p, i, c, o), nil
		}
		return fmt.Sprintf("In %s, does %s improve/reduce %s?", p, i, o), nil
	}
}

// Facets returns the facets the level actually uses
func (in GuidedInput) Facets() []model.Facet {
	facets := []model.Facet{
		{Kind: model.FacetPopulation, Concept: in.Population},
		{Kind: model.FacetIntervention, Concept: in.Intervention},
	}
	if in.Level >= LevelQuestion {
		facets = append(facets, model.Facet{Kind: model.FacetOutcome, Concept: in.Outcome})
	}
	if in.Level >= LevelProtocol {
		facets = append(facets, model.Facet{Kind: model.FacetComparison, Concept: in.Comparison})
	}
	return facets
}
