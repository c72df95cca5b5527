package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/database"
	"github.com/ortelius/pdvd-cvelookup/internal/metrics"
	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options tunes an Engine. Zero values fall back to the defaults.
type Options struct {
	Threshold     int
	SummaryWindow int
	Workers       int
	Timeout       time.Duration
	NAMatchesAny  bool
	VersionRanges bool
	SummarySearch bool
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:     util.DefaultThreshold,
		SummaryWindow: DefaultSummaryWindow,
		Workers:       4,
		Timeout:       30 * time.Second,
		NAMatchesAny:  true,
		SummarySearch: true,
	}
}

// OptionsFromConfig builds Options from the match and lookup settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Threshold:     cfg.Match.Threshold,
		SummaryWindow: cfg.Match.SummaryWindow,
		Workers:       cfg.Lookup.Workers,
		Timeout:       cfg.Lookup.Timeout,
		NAMatchesAny:  cfg.Match.NAMatchesAny,
		VersionRanges: cfg.Match.VersionRanges,
		SummarySearch: cfg.Match.SummarySearch,
	}
}

// Engine runs component lookups against a reference store.
type Engine struct {
	store  database.Store
	opts   Options
	fuzzy  util.Fuzzy
	logger *zap.Logger
}

// NewEngine returns an Engine reading from store.
func NewEngine(store database.Store, opts Options, logger *zap.Logger) *Engine {
	defaults := DefaultOptions()
	if opts.SummaryWindow <= 0 {
		opts.SummaryWindow = defaults.SummaryWindow
	}
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, opts: opts, fuzzy: util.NewFuzzy(opts.Threshold), logger: logger}
}

// LookupComponent resolves one component and collects the CVEs of both matchers.
// A component without dictionary candidate yields an empty result, not an error;
// errors are reserved for store failures and cancellation.
func (e *Engine) LookupComponent(ctx context.Context, req model.ComponentRequest) (model.ComponentResult, error) {
	comp := util.ParseComponent(req.Label, req.Version)
	result := model.ComponentResult{
		Input:     req.Label,
		Component: comp,
		CVEs:      []string{},
		Outcome:   model.OutcomeNoCandidate,
	}
	if comp.Product == "" {
		return result, nil
	}

	terms := util.GenerateSearchTerms(comp.Product)
	version := util.Unbind(comp.Version)

	res, err := ResolveCPE(ctx, e.store.CPEs(ctx), terms, version, e.fuzzy)
	if errors.Is(err, ErrNoCandidate) {
		e.logger.Debug("No CPE candidate", zap.String("component", req.Label), zap.Strings("terms", terms))
		return result, nil
	}
	if err != nil {
		return result, err
	}
	product := res.Product
	result.Product = &product
	result.Outcome = model.OutcomeMatched
	result.NearestVersions = NearestVersions(res, version)

	result.ByCPE, err = MatchCVEsByCPE(e.store.CVEs(ctx), product, CPEMatchOptions{
		Fuzzy:            e.fuzzy,
		NAMatchesAny:     e.opts.NAMatchesAny,
		VersionRanges:    e.opts.VersionRanges,
		RequestedVersion: comp.Version,
		Ecosystem:        comp.Ecosystem,
	})
	if err != nil {
		return result, err
	}
	metrics.AddMatches("cpe", len(result.ByCPE))

	if e.opts.SummarySearch {
		result.BySummary, err = MatchCVEsBySummary(e.store.Summaries(ctx), product, e.fuzzy, e.opts.SummaryWindow)
		if err != nil {
			return result, err
		}
		metrics.AddMatches("summary", len(result.BySummary))
	}

	ids := newIDSet()
	ids.add(result.ByCPE...)
	ids.add(result.BySummary...)
	result.CVEs = ids.sorted()

	e.logger.Debug("Resolved component",
		zap.String("component", req.Label),
		zap.String("vendor", product.VendorName()),
		zap.String("product", product.ProductName()),
		zap.String("version", product.VersionNumber()),
		zap.Int("candidates", len(res.Candidates)),
		zap.Strings("nearest_versions", result.NearestVersions),
		zap.Int("hits", len(result.CVEs)))
	return result, nil
}

// Lookup resolves every component in parallel and aggregates the results. The
// store is pinged first so an unavailable store fails the batch before any work.
// A store failure during the batch aborts it; a component exceeding the lookup
// timeout is reported empty with the timeout outcome.
func (e *Engine) Lookup(ctx context.Context, reqs []model.ComponentRequest) (*model.LookupResult, error) {
	if err := e.store.Ping(ctx); err != nil {
		metrics.StoreError()
		if !errors.Is(err, database.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", database.ErrStoreUnavailable, err)
		}
		return nil, err
	}

	details := make([]model.ComponentResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := e.lookupWithTimeout(gctx, req)
			if err != nil {
				return fmt.Errorf("component %q: %w", req.Label, err)
			}
			details[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, database.ErrStoreUnavailable) {
			metrics.StoreError()
		}
		e.logger.Error("Lookup batch aborted", zap.Int("components", len(reqs)), zap.Error(err))
		return nil, err
	}

	result := &model.LookupResult{
		Components: make(map[string][]string, len(details)),
		Details:    details,
	}
	union := newIDSet()
	for _, d := range details {
		result.Components[d.Input] = d.CVEs
		union.add(d.CVEs...)
	}
	result.Summary = union.sorted()
	return result, nil
}

// LookupLabels is Lookup for plain component strings.
func (e *Engine) LookupLabels(ctx context.Context, labels []string) (*model.LookupResult, error) {
	reqs := make([]model.ComponentRequest, len(labels))
	for i, l := range labels {
		reqs[i] = model.ComponentRequest{Label: l}
	}
	return e.Lookup(ctx, reqs)
}

func (e *Engine) lookupWithTimeout(ctx context.Context, req model.ComponentRequest) (model.ComponentResult, error) {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	res, err := e.LookupComponent(cctx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		e.logger.Warn("Component lookup timed out", zap.String("component", req.Label), zap.Duration("timeout", e.opts.Timeout))
		res = model.ComponentResult{
			Input:     req.Label,
			Component: res.Component,
			CVEs:      []string{},
			Outcome:   model.OutcomeTimeout,
		}
		err = nil
	}
	if err == nil {
		metrics.ObserveLookup(res.Outcome, time.Since(start).Seconds())
	}
	return res, err
}

// Describe returns the summary rows of ids in the order given. Unknown ids are skipped.
func (e *Engine) Describe(ctx context.Context, ids []string) ([]model.CVESummaryRecord, error) {
	wanted := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := wanted[id]; !ok {
			wanted[id] = i
		}
	}
	found := make([]*model.CVESummaryRecord, len(ids))
	for row, err := range e.store.Summaries(ctx) {
		if err != nil {
			return nil, err
		}
		if i, ok := wanted[row.CveID]; ok && found[i] == nil {
			found[i] = &row
		}
	}

	out := make([]model.CVESummaryRecord, 0, len(wanted))
	for _, rec := range found {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}
