package model

// SummaryKey is the reserved key of the host report holding the union of all matches.
const SummaryKey = "summary"

// Outcome values reported per component.
const (
	OutcomeMatched     = "matched"
	OutcomeNoCandidate = "no_candidate"
	OutcomeTimeout     = "timeout"
)

// Component is a parsed software identity ready to be resolved.
type Component struct {
	Label     string `json:"label"`
	Product   string `json:"product"`
	Version   string `json:"version"`
	Ecosystem string `json:"ecosystem,omitempty"`
}

// ComponentRequest is a single input to a lookup. Version is optional and, when set,
// is used instead of splitting it off the label.
type ComponentRequest struct {
	Label   string `json:"label"`
	Version string `json:"version,omitempty"`
}

// ComponentResult carries the full outcome of resolving one component.
type ComponentResult struct {
	Input           string          `json:"input"`
	Component       Component       `json:"component"`
	Product         *MatchedProduct `json:"product,omitempty"`
	CVEs            []string        `json:"cves"`
	ByCPE           []string        `json:"by_cpe,omitempty"`
	BySummary       []string        `json:"by_summary,omitempty"`
	NearestVersions []string        `json:"nearest_versions,omitempty"`
	Outcome         string          `json:"outcome"`
}

// LookupResult is the aggregate of a batch of component lookups.
type LookupResult struct {
	Components map[string][]string `json:"components"`
	Summary    []string            `json:"summary"`
	Details    []ComponentResult   `json:"details,omitempty"`
}

// AsMap returns the host report: every input string mapped to its CVE ids plus the
// reserved summary key holding the union. A component named "summary" is shadowed.
func (r *LookupResult) AsMap() map[string][]string {
	out := make(map[string][]string, len(r.Components)+1)
	for k, v := range r.Components {
		out[k] = v
	}
	out[SummaryKey] = r.Summary
	return out
}
