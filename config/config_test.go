package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Database.Backend)
	assert.Equal(t, 10000, cfg.Database.PageSize)
	assert.Equal(t, 3, cfg.Match.Threshold)
	assert.Equal(t, 3, cfg.Match.SummaryWindow)
	assert.True(t, cfg.Match.NAMatchesAny)
	assert.False(t, cfg.Match.VersionRanges)
	assert.True(t, cfg.Match.SummarySearch)
	assert.Equal(t, 4, cfg.Lookup.Workers)
	assert.Equal(t, 30*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)

	assert.Equal(t, "SELECT DISTINCT vendor, product, version FROM cpe_table", cfg.Queries.CPELookup)
	assert.True(t, strings.HasPrefix(cfg.Queries.CVELookup, "SELECT cve_id, vendor, product, version"))
	assert.Equal(t, "SELECT cve_id, summary, cvss_v2_score, cvss_v3_score FROM summary_table", cfg.Queries.SummaryLookup)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "cvelookup.yaml", `
database:
  backend: arangodb
  page_size: 500
match:
  threshold: 4
  version_ranges: true
lookup:
  timeout: 5s
`)
	t.Setenv("CVELOOKUP_LOOKUP_WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendArangoDB, cfg.Database.Backend)
	assert.Equal(t, 500, cfg.Database.PageSize)
	assert.Equal(t, 4, cfg.Match.Threshold)
	assert.True(t, cfg.Match.VersionRanges)
	assert.Equal(t, 5*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 8, cfg.Lookup.Workers)
	assert.Contains(t, cfg.Queries.CPELookup, "FOR c IN cpe_table")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "database:\n  backend: oracle\n")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)

	path = writeFile(t, "bad.yaml", "match:\n  threshold: 0\n")
	_, err = Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestQueryCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := LoadQueries("")
	require.NoError(t, err)
	for _, backend := range []string{BackendSQLite, BackendArangoDB} {
		_, err := catalog.For(backend)
		require.NoError(t, err, backend)
	}

	_, err = catalog.For("oracle")
	require.ErrorIs(t, err, ErrInvalidConfig)

	partial, err := ParseQueries([]byte("sqlite:\n  cpe_lookup: SELECT 1\n"))
	require.NoError(t, err)
	_, err = partial.For(BackendSQLite)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseQueries([]byte("sqlite: [unclosed"))
	require.Error(t, err)
}

func TestLoadQueriesOverride(t *testing.T) {
	path := writeFile(t, "queries.yaml", `
sqlite:
  cpe_lookup: SELECT vendor, product, version FROM cpe_view
  cve_lookup: SELECT * FROM cve_view
  summary_lookup: SELECT * FROM summary_view
`)
	t.Setenv("CVELOOKUP_DATABASE_QUERIES_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "SELECT vendor, product, version FROM cpe_view", cfg.Queries.CPELookup)
}
