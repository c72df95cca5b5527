package util

import (
	"strconv"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

// CalculateCVSSScore calculates the CVSS base score from a vector string.
// Vectors without a CVSS: prefix are treated as CVSS v2.
func CalculateCVSSScore(vectorStr string) float64 {
	if vectorStr == "" {
		return 0
	}
	if strings.HasPrefix(vectorStr, "CVSS:3.1") || strings.HasPrefix(vectorStr, "CVSS:3.0") {
		if cvss31, err := gocvss31.ParseVector(vectorStr); err == nil {
			return cvss31.BaseScore()
		}
	}
	if strings.HasPrefix(vectorStr, "CVSS:4.0") {
		if cvss40, err := gocvss40.ParseVector(vectorStr); err == nil {
			return cvss40.Score()
		}
	}
	if !strings.HasPrefix(vectorStr, "CVSS:") {
		if cvss20, err := gocvss20.ParseVector(vectorStr); err == nil {
			return cvss20.BaseScore()
		}
	}
	return 0
}

// ParseScore reads a CVSS column that holds either a numeric base score or a vector.
func ParseScore(field string) (float64, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f, true
	}
	if score := CalculateCVSSScore(field); score > 0 {
		return score, true
	}
	return 0, false
}

// HighestScore returns the highest score among the given CVSS columns and whether any parsed.
func HighestScore(fields ...string) (float64, bool) {
	var highest float64
	found := false
	for _, f := range fields {
		if s, ok := ParseScore(f); ok {
			found = true
			highest = max(highest, s)
		}
	}
	return highest, found
}

// GetSeverityRating returns the severity rating for a given CVSS score
func GetSeverityRating(score float64) string {
	switch {
	case score == 0:
		return "NONE"
	case score < 4.0:
		return "LOW"
	case score < 7.0:
		return "MEDIUM"
	case score < 9.0:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}
