package util

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"
)

// VersionRange holds the optional bounds of an affected version range.
type VersionRange struct {
	StartIncluding string
	StartExcluding string
	EndIncluding   string
	EndExcluding   string
}

// IsEmpty reports whether no bound is set.
func (r VersionRange) IsEmpty() bool {
	return r.StartIncluding == "" && r.StartExcluding == "" && r.EndIncluding == "" && r.EndExcluding == ""
}

// comparator returns -1, 0 or 1 ordering a against b, or ok=false when either fails to parse.
type comparator func(a, b string) (int, bool)

// VersionInRange reports whether version falls inside r. Comparison uses the npm
// or PEP 440 rules for those ecosystems and semver otherwise, falling back to a
// segment-wise comparison when a version does not parse. An empty range never matches.
func VersionInRange(version, ecosystem string, r VersionRange) bool {
	if r.IsEmpty() || version == "" {
		return false
	}
	version = Unescape(version)
	cmp := comparatorFor(ecosystem)

	check := func(bound string, accept func(int) bool) bool {
		if bound == "" {
			return true
		}
		bound = Unescape(bound)
		if bound == VersionAnyBound {
			return true
		}
		c, ok := cmp(version, bound)
		if !ok {
			c = compareSegments(version, bound)
		}
		return accept(c)
	}

	return check(r.StartIncluding, func(c int) bool { return c >= 0 }) &&
		check(r.StartExcluding, func(c int) bool { return c > 0 }) &&
		check(r.EndIncluding, func(c int) bool { return c <= 0 }) &&
		check(r.EndExcluding, func(c int) bool { return c < 0 })
}

// VersionAnyBound is a range bound that places no constraint.
const VersionAnyBound = "*"

func comparatorFor(ecosystem string) comparator {
	switch strings.ToLower(ecosystem) {
	case "npm":
		return compareNPM
	case "pypi":
		return comparePEP440
	}
	return compareSemver
}

func compareSemver(a, b string) (int, bool) {
	va, err := semver.NewVersion(a)
	if err != nil {
		return 0, false
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return 0, false
	}
	return order(va.LessThan(vb), va.GreaterThan(vb)), true
}

func compareNPM(a, b string) (int, bool) {
	va, err := npm.NewVersion(a)
	if err != nil {
		return 0, false
	}
	vb, err := npm.NewVersion(b)
	if err != nil {
		return 0, false
	}
	return order(va.LessThan(vb), va.GreaterThan(vb)), true
}

func comparePEP440(a, b string) (int, bool) {
	va, err := pep440.Parse(a)
	if err != nil {
		return 0, false
	}
	vb, err := pep440.Parse(b)
	if err != nil {
		return 0, false
	}
	return order(va.LessThan(vb), va.GreaterThan(vb)), true
}

func order(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
