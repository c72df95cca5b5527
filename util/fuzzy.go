// Package util provides the matching primitives shared by the lookup engine:
// edit distance, CPE escaping, dotted-version helpers and component parsing.
//
//revive:disable-next-line:var-naming
package util

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// DefaultThreshold is the edit distance below which two terms are considered equal.
const DefaultThreshold = 3

// Fuzzy compares terms with a bounded Damerau-Levenshtein distance.
type Fuzzy struct {
	Threshold int
}

// NewFuzzy returns a Fuzzy using threshold, or DefaultThreshold when threshold is not positive.
func NewFuzzy(threshold int) Fuzzy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Fuzzy{Threshold: threshold}
}

// Match reports whether term and candidate are within the threshold.
func (f Fuzzy) Match(term, candidate string) bool {
	return Distance(term, candidate) < f.Threshold
}

// TermsMatch reports whether term and candidate are within DefaultThreshold edits.
func TermsMatch(term, candidate string) bool {
	return Distance(term, candidate) < DefaultThreshold
}

// Distance returns the optimal string alignment distance between a and b,
// compared case-insensitively: unit-cost insertion, deletion, substitution
// and transposition of adjacent characters.
func Distance(a, b string) int {
	return edlib.OSADamerauLevenshteinDistance(strings.ToLower(a), strings.ToLower(b))
}
