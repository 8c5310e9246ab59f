package model

import "time"

// Report is the outcome of building one PubMed query
type Report struct {
	Question string        `json:"question"`         // As entered, or generated from the guided form
	Path     ReportPath    `json:"path"`             // natural or guided
	Intent   Intent        `json:"intent,omitempty"` // natural path only
	Level    int           `json:"level,omitempty"`  // guided path only
	Mode     PrecisionMode `json:"mode"`

	Analysis   *GenerationResult `json:"analysis,omitempty"`   // Decomposition returned by the provider
	Generation *GenerationMeta   `json:"generation,omitempty"` // How the decomposition was obtained

	Facets    []Facet  `json:"facets"`
	Query     string   `json:"query"`
	SearchURL string   `json:"search_url"`
	Signals   []Signal `json:"signals,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ReportPath tells which entry point produced a report
type ReportPath string

const (
	PathNatural ReportPath = "natural"
	PathGuided  ReportPath = "guided"
)

// GenerationMeta records which provider answered and with which exemplars
type GenerationMeta struct {
	RequestID string   `json:"request_id"`
	Provider  string   `json:"provider"`
	Attempts  int      `json:"attempts"`
	Exemplars []string `json:"exemplars,omitempty"`
}

// Signal is a diagnostic attached to a report
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    SignalSeverity `json:"severity"`
	Description string         `json:"description"`
}

// SignalType classifies a diagnostic signal
type SignalType string

const (
	SignalReformulated       SignalType = "reformulated"        // Provider proposed a better-formed question
	SignalResolutionDegraded SignalType = "resolution_degraded" // A concept fell back to an [All Fields] search
	SignalUnbalanced         SignalType = "unbalanced"          // Query parentheses or quotes do not balance
	SignalNoMeSH             SignalType = "no_mesh"             // No authoritative fragment in any facet
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// HasSignal reports whether the report carries a signal of type t
func (r *Report) HasSignal(t SignalType) bool {
	for _, s := range r.Signals {
		if s.Type == t {
			return true
		}
	}
	return false
}
