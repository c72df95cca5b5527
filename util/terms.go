package util

import "strings"

// GenerateSearchTerms expands a product label into every contiguous span of its
// whitespace-separated tokens, joined with underscores, lowercased and escaped.
// Spans are ordered by start token, then by end token: "windows 7" yields
// windows, windows_7 and 7.
func GenerateSearchTerms(label string) []string {
	tokens := strings.Fields(label)
	n := len(tokens)
	terms := make([]string, 0, n*(n+1)/2)
	for start := 0; start < n; start++ {
		for end := start + 1; end <= n; end++ {
			term := strings.ToLower(strings.Join(tokens[start:end], "_"))
			terms = append(terms, Unbind(term))
		}
	}
	return terms
}
