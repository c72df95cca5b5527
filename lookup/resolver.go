// Package lookup resolves software components to CPE dictionary entries and the CVEs associated with them.
package lookup

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
)

// ErrNoCandidate is returned when no dictionary product matches any search term.
var ErrNoCandidate = errors.New("no CPE candidate matched the search terms")

// Resolution is the outcome of ResolveCPE: the best product and every candidate
// ordered by version distance.
type Resolution struct {
	Product    model.MatchedProduct
	Candidates []model.MatchedProduct
}

// ResolveCPE selects the dictionary row whose product is within fuzzy distance of
// any search term and whose version is closest to version. Ties keep the row that
// came first from the store.
func ResolveCPE(ctx context.Context, rows iter.Seq2[model.CPERecord, error], terms []string, version string, fuzzy util.Fuzzy) (Resolution, error) {
	type candidate struct {
		product  model.MatchedProduct
		distance int
	}
	var candidates []candidate

	for row, err := range rows {
		if err != nil {
			return Resolution{}, err
		}
		// rows ingested without a product name cannot identify anything
		if row.Product == "" || !anyTermMatches(terms, row.Product, fuzzy) {
			continue
		}
		candidates = append(candidates, candidate{
			product:  model.MatchedProductFromCPE(row),
			distance: util.Distance(row.Version, version),
		})
	}
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	if len(candidates) == 0 {
		return Resolution{}, ErrNoCandidate
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int { return a.distance - b.distance })

	res := Resolution{
		Product:    candidates[0].product,
		Candidates: make([]model.MatchedProduct, len(candidates)),
	}
	for i, c := range candidates {
		res.Candidates[i] = c.product
	}
	return res, nil
}

func anyTermMatches(terms []string, product string, fuzzy util.Fuzzy) bool {
	for _, term := range terms {
		if fuzzy.Match(term, product) {
			return true
		}
	}
	return false
}

// NearestVersions returns the known versions of the chosen vendor/product that
// bound the requested version. It is empty when the request matched exactly or
// is not a dotted version.
func NearestVersions(res Resolution, requested string) []string {
	chosen := res.Product
	if requested == "" || chosen.VersionNumber() == requested || !util.IsValidDottedVersion(requested) {
		return nil
	}

	versions := []string{requested}
	for _, c := range res.Candidates {
		if c.VendorName() == chosen.VendorName() && c.ProductName() == chosen.ProductName() {
			versions = append(versions, c.VersionNumber())
		}
	}
	neighbors, err := util.GetClosestMatches(util.SortVersions(versions), requested)
	if err != nil {
		return nil
	}
	return neighbors
}
