package database

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/internal/testutils"
	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}

func sqliteQueries(t *testing.T) config.Queries {
	t.Helper()
	catalog, err := config.LoadQueries("")
	require.NoError(t, err)
	q, err := catalog.For(config.BackendSQLite)
	require.NoError(t, err)
	return q
}

func TestSQLStoreStreamsScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := testutils.ScenarioSQLite(t)
	// a page smaller than the tables forces several page refills
	store, err := OpenSQLite(ctx, path, sqliteQueries(t), 2)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(ctx))

	cpes, err := collect(store.CPEs(ctx))
	require.NoError(t, err)
	assert.ElementsMatch(t, testutils.CPEs(), cpes)

	cves, err := collect(store.CVEs(ctx))
	require.NoError(t, err)
	assert.ElementsMatch(t, testutils.CVEs(), cves)

	summaries, err := collect(store.Summaries(ctx))
	require.NoError(t, err)
	assert.ElementsMatch(t, testutils.Summaries(), summaries)
}

func TestSQLStoreDistinctCPEs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "dup.db")
	row := model.CPERecord{Vendor: "openssl", Product: "openssl", Version: `1\.0\.2`}
	testutils.SeedSQLite(t, path, []model.CPERecord{row, row, row}, nil, nil)

	store, err := OpenSQLite(ctx, path, sqliteQueries(t), 10)
	require.NoError(t, err)
	defer store.Close()

	cpes, err := collect(store.CPEs(ctx))
	require.NoError(t, err)
	assert.Equal(t, []model.CPERecord{row}, cpes)
}

func TestSQLStoreNullColumns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := OpenSQLite(ctx, testutils.ScenarioSQLiteWithNulls(t), sqliteQueries(t), 3)
	require.NoError(t, err)
	defer store.Close()

	cpes, err := collect(store.CPEs(ctx))
	require.NoError(t, err)
	assert.Contains(t, cpes, model.CPERecord{Vendor: "acme", Product: "widget"})
	assert.Contains(t, cpes, model.CPERecord{})
	assert.Len(t, cpes, len(testutils.CPEs())+2)

	cves, err := collect(store.CVEs(ctx))
	require.NoError(t, err)
	assert.Contains(t, cves, model.CVERecord{CveID: "CVE-1234-0099", Product: "widget"})

	summaries, err := collect(store.Summaries(ctx))
	require.NoError(t, err)
	assert.Contains(t, summaries, model.CVESummaryRecord{CveID: "CVE-1234-0099"})
}

func TestSequenceSinglePass(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := OpenSQLite(ctx, testutils.ScenarioSQLite(t), sqliteQueries(t), 10)
	require.NoError(t, err)
	defer store.Close()

	seq := store.CPEs(ctx)
	first, err := collect(seq)
	require.NoError(t, err)
	require.Len(t, first, 5)

	_, err = collect(seq)
	require.ErrorIs(t, err, ErrCursorConsumed)

	// a fresh query is a fresh sequence
	again, err := collect(store.CPEs(ctx))
	require.NoError(t, err)
	assert.Len(t, again, 5)
}

func TestSequenceEarlyStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := OpenSQLite(ctx, testutils.ScenarioSQLite(t), sqliteQueries(t), 2)
	require.NoError(t, err)
	defer store.Close()

	seen := 0
	for _, err := range store.CVEs(ctx) {
		require.NoError(t, err)
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestSQLStoreQueryFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	q := sqliteQueries(t)
	store := NewSQLStore(sqlx.NewDb(mockDB, "sqlmock"), q, 10)
	defer store.Close()

	mock.ExpectQuery(regexp.QuoteMeta(q.CPELookup)).WillReturnError(errors.New("disk I/O error"))

	_, err = collect(store.CPEs(ctx))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "cpe_lookup")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreRowError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	q := sqliteQueries(t)
	store := NewSQLStore(sqlx.NewDb(mockDB, "sqlmock"), q, 10)
	defer store.Close()

	rows := sqlmock.NewRows([]string{"cve_id", "summary", "cvss_v2_score", "cvss_v3_score"}).
		AddRow("CVE-1", "first", nil, "5.0").
		AddRow("CVE-2", "second", nil, nil).
		RowError(1, errors.New("connection reset"))
	mock.ExpectQuery(regexp.QuoteMeta(q.SummaryLookup)).WillReturnRows(rows)

	got, err := collect(store.Summaries(ctx))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, []model.CVESummaryRecord{{CveID: "CVE-1", Summary: "first", CVSSv3: "5.0"}}, got)
}

func TestSQLStorePingFailure(t *testing.T) {
	t.Parallel()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	store := NewSQLStore(sqlx.NewDb(mockDB, "sqlmock"), sqliteQueries(t), 10)
	defer store.Close()

	mock.ExpectPing().WillReturnError(errors.New("gone"))
	require.ErrorIs(t, store.Ping(context.Background()), ErrStoreUnavailable)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := config.DatabaseConfig{
		Backend:  config.BackendSQLite,
		Path:     testutils.ScenarioSQLite(t),
		PageSize: 100,
		Retry:    config.RetryConfig{InitialInterval: 10 * time.Millisecond, MaxInterval: 20 * time.Millisecond, MaxElapsed: 100 * time.Millisecond},
	}
	store, err := Open(ctx, cfg, sqliteQueries(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Close())

	cfg.Path = filepath.Join(t.TempDir(), "missing.db")
	_, err = Open(ctx, cfg, sqliteQueries(t), zap.NewNop())
	require.ErrorIs(t, err, ErrStoreUnavailable)

	cfg.Backend = "oracle"
	_, err = Open(ctx, cfg, sqliteQueries(t), zap.NewNop())
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cpes := append(testutils.CPEs(), testutils.CPEs()[0])
	store := NewMemoryStore(cpes, testutils.CVEs(), testutils.Summaries())

	got, err := collect(store.CPEs(ctx))
	require.NoError(t, err)
	assert.Equal(t, testutils.CPEs(), got)

	seq := store.Summaries(ctx)
	_, err = collect(seq)
	require.NoError(t, err)
	_, err = collect(seq)
	require.ErrorIs(t, err, ErrCursorConsumed)

	store.FailWith(errors.New("offline"))
	require.ErrorIs(t, store.Ping(ctx), ErrStoreUnavailable)
	_, err = collect(store.CVEs(ctx))
	require.ErrorIs(t, err, ErrStoreUnavailable)
}
