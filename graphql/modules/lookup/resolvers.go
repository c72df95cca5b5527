package lookup

import (
	"context"
	"fmt"

	"github.com/ortelius/pdvd-cvelookup/model"
)

// Engine is the part of the lookup engine the GraphQL queries need.
type Engine interface {
	Lookup(ctx context.Context, reqs []model.ComponentRequest) (*model.LookupResult, error)
	Describe(ctx context.Context, ids []string) ([]model.CVESummaryRecord, error)
}

// ResolveLookup runs a batch lookup for the given component labels.
func ResolveLookup(ctx context.Context, engine Engine, labels []string) (*model.LookupResult, error) {
	reqs := make([]model.ComponentRequest, 0, len(labels))
	for _, l := range labels {
		reqs = append(reqs, model.ComponentRequest{Label: l})
	}
	res, err := engine.Lookup(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}
	return res, nil
}

// ResolveDetails returns the summary rows of the given CVE ids.
func ResolveDetails(ctx context.Context, engine Engine, ids []string) ([]model.CVESummaryRecord, error) {
	recs, err := engine.Describe(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load CVE details: %w", err)
	}
	return recs, nil
}

func stringArgs(raw interface{}) []string {
	items, _ := raw.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
