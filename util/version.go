package util

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ortelius/pdvd-cvelookup/model"
)

// escapedSeparator is the dotted-version separator as stored in the CPE dictionary.
const escapedSeparator = `\.`

var (
	// ErrInvalidDottedVersion is returned when a version has fewer than two non-empty dot-separated segments.
	ErrInvalidDottedVersion = errors.New("invalid dotted version")
	// ErrVersionIndexOutOfRange is returned when a segment index falls outside a valid dotted version.
	ErrVersionIndexOutOfRange = errors.New("version segment index out of range")
	// ErrVersionNotListed is returned when the target version is not present in the version list.
	ErrVersionNotListed = errors.New("version not present in list")
)

// Unbind escapes a raw string into CPE attribute form: space and every ASCII
// punctuation character other than underscore are prefixed with a backslash.
func Unbind(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)
	for _, r := range s {
		if needsEscape(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UnbindAll applies Unbind to every element, preserving order.
func UnbindAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = Unbind(s)
	}
	return out
}

// Unescape removes CPE backslash quoting.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func needsEscape(r rune) bool {
	if r == ' ' {
		return true
	}
	if r <= ' ' || r >= 0x7f || r == '_' {
		return false
	}
	isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	return !isAlnum
}

func dottedSegments(version string) []string {
	return strings.Split(version, escapedSeparator)
}

// IsValidDottedVersion reports whether version has at least two segments separated by
// escaped dots and none of them is empty.
func IsValidDottedVersion(version string) bool {
	segments := dottedSegments(version)
	if len(segments) < 2 {
		return false
	}
	for _, s := range segments {
		if s == "" {
			return false
		}
	}
	return true
}

// GetVersionIndex returns the segment of a dotted version at index. Negative
// indices count from the end.
func GetVersionIndex(version string, index int) (string, error) {
	if !IsValidDottedVersion(version) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDottedVersion, version)
	}
	segments := dottedSegments(version)
	pos := index
	if pos < 0 {
		pos += len(segments)
	}
	if pos < 0 || pos >= len(segments) {
		return "", fmt.Errorf("%w: index %d of %q", ErrVersionIndexOutOfRange, index, version)
	}
	return segments[pos], nil
}

// GetVersionNumbers projects the version of each matched product, preserving order.
func GetVersionNumbers(products []model.MatchedProduct) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.VersionNumber()
	}
	return out
}

// GetClosestMatches returns the neighbors of target in an ordered version list:
// the predecessor and the successor, or only the one that exists at either edge.
func GetClosestMatches(versions []string, target string) ([]string, error) {
	idx := slices.Index(versions, target)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrVersionNotListed, target)
	}
	var out []string
	if idx > 0 {
		out = append(out, versions[idx-1])
	}
	if idx < len(versions)-1 {
		out = append(out, versions[idx+1])
	}
	return out, nil
}

// CompareVersions orders two versions, escaped or raw. Versions that both parse as
// semver are compared as such, anything else segment by segment with numeric
// segments compared as numbers.
func CompareVersions(a, b string) int {
	ua, ub := Unescape(a), Unescape(b)
	va, errA := semver.NewVersion(ua)
	vb, errB := semver.NewVersion(ub)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return compareSegments(ua, ub)
}

func compareSegments(a, b string) int {
	sa := strings.Split(a, ".")
	sb := strings.Split(b, ".")
	for i := 0; i < len(sa) && i < len(sb); i++ {
		na, errA := strconv.Atoi(sa[i])
		nb, errB := strconv.Atoi(sb[i])
		var c int
		if errA == nil && errB == nil {
			c = na - nb
		} else {
			c = strings.Compare(sa[i], sb[i])
		}
		if c != 0 {
			if c < 0 {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(sa) < len(sb):
		return -1
	case len(sa) > len(sb):
		return 1
	}
	return 0
}

// SortVersions returns a sorted, deduplicated copy of versions.
func SortVersions(versions []string) []string {
	out := slices.Clone(versions)
	slices.SortStableFunc(out, CompareVersions)
	return slices.CompactFunc(out, func(a, b string) bool { return a == b })
}
