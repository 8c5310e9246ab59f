package exemplar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/querysmith/internal/model"
)

// DefaultK is the number of demonstrations selected when k is not positive
const DefaultK = 3

// TargetTags returns the intent tag plus every tag triggered by a keyword
// found in the lowercased question, sorted.
func TargetTags(question string, intent model.Intent) []string {
	set := targetSet(question, intent)
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func targetSet(question string, intent model.Intent) map[string]bool {
	set := map[string]bool{string(intent): true}
	q := strings.ToLower(question)
	for _, kw := range keywords {
		if strings.Contains(q, kw.match) {
			for _, t := range kw.tags {
				set[t] = true
			}
		}
	}
	return set
}

// Framework returns the first framework tag of ex, or "" if it has none
func Framework(ex model.Exemplar) string {
	for _, t := range ex.Tags {
		if frameworks[t] {
			return t
		}
	}
	return ""
}

// Select picks up to k demonstrations for question. Exemplars are ranked by
// how many target tags they share, ties keeping corpus order. While fewer
// than k-1 are selected, an exemplar whose framework is already represented
// is skipped. Structure requests always include the null-reformulation
// exemplar, replacing the last pick when the selection is full.
func Select(question string, intent model.Intent, corpus []model.Exemplar, k int) []model.Exemplar {
	if k <= 0 {
		k = DefaultK
	}
	target := targetSet(question, intent)

	type scored struct {
		score int
		ex    model.Exemplar
	}
	ranked := make([]scored, len(corpus))
	for i, ex := range corpus {
		n := 0
		for _, t := range uniq(ex.Tags) {
			if target[t] {
				n++
			}
		}
		ranked[i] = scored{score: n, ex: ex}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	selected := make([]model.Exemplar, 0, k)
	seen := make(map[string]bool)
	for _, r := range ranked {
		if len(selected) >= k {
			break
		}
		fw := Framework(r.ex)
		if fw != "" && seen[fw] && len(selected) < k-1 {
			continue
		}
		selected = append(selected, r.ex)
		if fw != "" {
			seen[fw] = true
		}
	}

	if intent == model.IntentStructure {
		selected = forceNull(selected, corpus, k)
	}
	return selected
}

func forceNull(selected, corpus []model.Exemplar, k int) []model.Exemplar {
	for _, ex := range selected {
		if ex.ID == NullReformulationID {
			return selected
		}
	}
	for _, ex := range corpus {
		if ex.ID != NullReformulationID {
			continue
		}
		if len(selected) >= k {
			selected[len(selected)-1] = ex
		} else {
			selected = append(selected, ex)
		}
		break
	}
	return selected
}

func uniq(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Format renders exemplars as the demonstration block injected into the
// prompt, one block per exemplar separated by a blank line.
func Format(exemplars []model.Exemplar) string {
	parts := make([]string, 0, len(exemplars))
	for _, ex := range exemplars {
		var body bytes.Buffer
		if err := json.Indent(&body, ex.ExampleJSON, "", "  "); err != nil {
			body.Reset()
			body.Write(ex.ExampleJSON)
		}
		parts = append(parts, fmt.Sprintf("--- Example %s ---\nQuestion : \"%s\"\nIntent : %s\n\n%s",
			ex.ID, ex.QuestionFR, ex.Intent, body.String()))
	}
	return strings.Join(parts, "\n\n")
}

// IDs returns the exemplar ids in order
func IDs(exemplars []model.Exemplar) []string {
	ids := make([]string, len(exemplars))
	for i, ex := range exemplars {
		ids[i] = ex.ID
	}
	return ids
}
