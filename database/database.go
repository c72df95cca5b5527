// Package database - Handles all read access to the CPE/CVE reference store
package database

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/model"
	"go.uber.org/zap"
)

var (
	// ErrStoreUnavailable is returned when the reference store cannot be opened or queried.
	ErrStoreUnavailable = errors.New("reference store unavailable")
	// ErrCursorConsumed is returned when a row sequence is ranged over a second time.
	ErrCursorConsumed = errors.New("row sequence already consumed")
)

// Store streams the read-only reference tables. Each call starts a fresh query;
// the returned sequence can be ranged over once and stops early when the caller breaks.
type Store interface {
	CPEs(ctx context.Context) iter.Seq2[model.CPERecord, error]
	CVEs(ctx context.Context) iter.Seq2[model.CVERecord, error]
	Summaries(ctx context.Context) iter.Seq2[model.CVESummaryRecord, error]
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the configured backend, retrying with exponential backoff until
// cfg.Retry.MaxElapsed has passed.
func Open(ctx context.Context, cfg config.DatabaseConfig, queries config.Queries, logger *zap.Logger) (Store, error) {
	if cfg.Backend == config.BackendSQLite {
		// a missing file will not appear by retrying
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, unavailable("open", err)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Retry.InitialInterval
	bo.MaxInterval = cfg.Retry.MaxInterval
	bo.MaxElapsedTime = cfg.Retry.MaxElapsed

	var store Store
	err := backoff.RetryNotify(func() error {
		var err error
		switch cfg.Backend {
		case config.BackendSQLite:
			store, err = OpenSQLite(ctx, cfg.Path, queries, cfg.PageSize)
		case config.BackendArangoDB:
			store, err = OpenArango(ctx, cfg.Arango, queries, cfg.PageSize, logger)
		default:
			return fmt.Errorf("unknown backend %q", cfg.Backend)
		}
		return err
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		logger.Warn("Retrying connection to reference store", zap.String("backend", cfg.Backend), zap.Duration("next", next), zap.Error(err))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	logger.Info("Connected to reference store", zap.String("backend", cfg.Backend), zap.Int("page_size", cfg.PageSize))
	return store, nil
}

// once wraps seq so that a second range yields ErrCursorConsumed instead of re-running the query.
func once[T any](seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	var used atomic.Bool
	return func(yield func(T, error) bool) {
		if used.Swap(true) {
			var zero T
			yield(zero, ErrCursorConsumed)
			return
		}
		seq(yield)
	}
}

// failed returns a sequence yielding only err.
func failed[T any](err error) iter.Seq2[T, error] {
	return once(func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	})
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
