package lookup

import (
	"iter"
	"strings"

	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
)

// DefaultSummaryWindow is how many tokens after a vendor mention may hold the start of the product name.
const DefaultSummaryWindow = 3

// MatchCVEsBySummary returns the sorted, distinct ids of summaries that mention
// the vendor followed closely by the product.
func MatchCVEsBySummary(rows iter.Seq2[model.CVESummaryRecord, error], product model.MatchedProduct, fuzzy util.Fuzzy, window int) ([]string, error) {
	if window <= 0 {
		window = DefaultSummaryWindow
	}
	vendor := nameTokens(product.VendorName())
	name := nameTokens(product.ProductName())

	ids := newIDSet()
	if len(vendor) == 0 || len(name) == 0 {
		return ids.sorted(), nil
	}

	for row, err := range rows {
		if err != nil {
			return nil, err
		}
		words := strings.Fields(strings.ToLower(row.Summary))
		if mentionsProduct(words, vendor[0], name, fuzzy, window) {
			ids.add(row.CveID)
		}
	}
	return ids.sorted(), nil
}

// mentionsProduct scans words for the vendor; after each vendor hit with room
// for the whole product, the first product token must appear within window
// words, and the remaining product tokens must follow it without gaps.
func mentionsProduct(words []string, vendor string, product []string, fuzzy util.Fuzzy, window int) bool {
	for i, word := range words {
		if !fuzzy.Match(vendor, word) {
			continue
		}
		remaining := len(words) - (i + 1)
		if remaining < len(product) {
			continue
		}
		if productFollows(words[i+1:], product, fuzzy, min(window, remaining)) {
			return true
		}
	}
	return false
}

func productFollows(words []string, product []string, fuzzy util.Fuzzy, window int) bool {
	for offset := 0; offset < window; offset++ {
		if !fuzzy.Match(product[0], words[offset]) {
			continue
		}
		for k := 1; k < len(product); k++ {
			pos := offset + k
			if pos >= len(words) || !fuzzy.Match(product[k], words[pos]) {
				return false
			}
		}
		return true
	}
	return false
}

func nameTokens(name string) []string {
	name = strings.ToLower(util.Unescape(name))
	return strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
}
