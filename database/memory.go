package database

import (
	"context"
	"iter"
	"slices"

	"github.com/ortelius/pdvd-cvelookup/model"
)

// MemoryStore serves reference rows held in memory. The CPE projection is
// deduplicated like SELECT DISTINCT.
type MemoryStore struct {
	cpes      []model.CPERecord
	cves      []model.CVERecord
	summaries []model.CVESummaryRecord
	err       error
}

// NewMemoryStore copies the given rows into a new store.
func NewMemoryStore(cpes []model.CPERecord, cves []model.CVERecord, summaries []model.CVESummaryRecord) *MemoryStore {
	seen := make(map[model.CPERecord]struct{}, len(cpes))
	distinct := make([]model.CPERecord, 0, len(cpes))
	for _, c := range cpes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	return &MemoryStore{
		cpes:      distinct,
		cves:      slices.Clone(cves),
		summaries: slices.Clone(summaries),
	}
}

// FailWith makes every subsequent query and ping fail with err wrapped in ErrStoreUnavailable.
func (m *MemoryStore) FailWith(err error) *MemoryStore {
	m.err = err
	return m
}

// CPEs streams the dictionary rows.
func (m *MemoryStore) CPEs(ctx context.Context) iter.Seq2[model.CPERecord, error] {
	return sliceRows(ctx, "cpe_lookup", m.cpes, m.err)
}

// CVEs streams the CVE rows.
func (m *MemoryStore) CVEs(ctx context.Context) iter.Seq2[model.CVERecord, error] {
	return sliceRows(ctx, "cve_lookup", m.cves, m.err)
}

// Summaries streams the summary rows.
func (m *MemoryStore) Summaries(ctx context.Context) iter.Seq2[model.CVESummaryRecord, error] {
	return sliceRows(ctx, "summary_lookup", m.summaries, m.err)
}

// Ping reports the configured failure, if any.
func (m *MemoryStore) Ping(_ context.Context) error {
	if m.err != nil {
		return unavailable("ping", m.err)
	}
	return nil
}

// Close does nothing.
func (m *MemoryStore) Close() error { return nil }

func sliceRows[T any](ctx context.Context, name string, rows []T, failure error) iter.Seq2[T, error] {
	if failure != nil {
		return failed[T](unavailable(name, failure))
	}
	return once(func(yield func(T, error) bool) {
		var zero T
		for _, r := range rows {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	})
}
