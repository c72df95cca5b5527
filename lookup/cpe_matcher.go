package lookup

import (
	"iter"
	"strings"

	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
)

// CPEMatchOptions tunes MatchCVEsByCPE.
type CPEMatchOptions struct {
	Fuzzy util.Fuzzy
	// NAMatchesAny makes the NA version sentinel match every version, like ANY.
	NAMatchesAny bool
	// VersionRanges enables matching RequestedVersion against the range columns.
	VersionRanges    bool
	RequestedVersion string
	Ecosystem        string
}

// MatchCVEsByCPE returns the sorted, distinct ids of CVE rows whose vendor and
// product are within fuzzy distance of product and whose version contains the
// matched version or is a wildcard sentinel.
func MatchCVEsByCPE(rows iter.Seq2[model.CVERecord, error], product model.MatchedProduct, opts CPEMatchOptions) ([]string, error) {
	ids := newIDSet()
	for row, err := range rows {
		if err != nil {
			return nil, err
		}
		if !opts.Fuzzy.Match(product.VendorName(), row.Vendor) {
			continue
		}
		if !opts.Fuzzy.Match(product.ProductName(), row.Product) {
			continue
		}
		if versionMatches(row, product.VersionNumber(), opts) {
			ids.add(row.CveID)
		}
	}
	return ids.sorted(), nil
}

func versionMatches(row model.CVERecord, version string, opts CPEMatchOptions) bool {
	switch {
	case strings.Contains(row.Version, version):
		return true
	case row.Version == model.VersionAny:
		return true
	case row.Version == model.VersionNA && opts.NAMatchesAny:
		return true
	}
	if opts.VersionRanges && row.HasRange() {
		return util.VersionInRange(opts.RequestedVersion, opts.Ecosystem, util.VersionRange{
			StartIncluding: row.VersionStartIncluding,
			StartExcluding: row.VersionStartExcluding,
			EndIncluding:   row.VersionEndIncluding,
			EndExcluding:   row.VersionEndExcluding,
		})
	}
	return false
}
