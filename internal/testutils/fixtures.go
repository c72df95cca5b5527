// Package testutils provides reference-store fixtures shared by package tests.
package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver
	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/stretchr/testify/require"
)

// Schema creates the reference tables with the column layout of the ingestion pipeline.
const Schema = `
CREATE TABLE IF NOT EXISTS cpe_table (
	cpe_id TEXT, part TEXT, vendor TEXT, product TEXT, version TEXT, "update" TEXT,
	edition TEXT, language TEXT, sw_edition TEXT, target_sw TEXT, target_hw TEXT, other TEXT
);
CREATE TABLE IF NOT EXISTS cve_table (
	cve_id TEXT, year INTEGER, cpe_id TEXT, cvss_v2_score TEXT, cvss_v3_score TEXT,
	part TEXT, vendor TEXT, product TEXT, version TEXT, "update" TEXT, edition TEXT,
	language TEXT, sw_edition TEXT, target_sw TEXT, target_hw TEXT, other TEXT,
	version_start_including TEXT, version_start_excluding TEXT,
	version_end_including TEXT, version_end_excluding TEXT
);
CREATE TABLE IF NOT EXISTS summary_table (
	cve_id TEXT, year INTEGER, summary TEXT, cvss_v2_score TEXT, cvss_v3_score TEXT
);
`

// CPEs is the dictionary of the windows scenario.
func CPEs() []model.CPERecord {
	return []model.CPERecord{
		{Vendor: "microsoft", Product: "server_2013", Version: "2013"},
		{Vendor: "mircosof", Product: "windows_7", Version: `0\.7`},
		{Vendor: "microsoft", Product: "windows_8", Version: `1\.2\.5`},
		{Vendor: "microsoft", Product: "windows_7", Version: `1\.3\.1`},
		{Vendor: "linux", Product: "linux_kernel", Version: `2\.2\.3`},
	}
}

// CVEs is the CVE table of the windows scenario.
func CVEs() []model.CVERecord {
	return []model.CVERecord{
		{CveID: "CVE-1234-0008", Vendor: "microsoft", Product: "server_2013", Version: "2013", CVSSv3: "5.3"},
		{CveID: "CVE-1234-0009", Vendor: "mircosof", Product: "windows_7", Version: `0\.7`, CVSSv3: "6.1"},
		{CveID: "CVE-1234-0010", Vendor: "microsoft", Product: "windows_8", Version: `1\.2\.5`, CVSSv2: "7.5", CVSSv3: "9.8"},
		{CveID: "CVE-1234-0011", Vendor: "microsoft", Product: "windows_7", Version: `1\.3\.1`, CVSSv3: "4.0"},
		{CveID: "CVE-1234-0012", Vendor: "linux", Product: "linux_kernel", Version: `2\.2\.3`},
	}
}

// Summaries is the summary table of the windows scenario.
func Summaries() []model.CVESummaryRecord {
	return []model.CVESummaryRecord{
		{CveID: "CVE-1234-0001", Summary: "Attacker gains remote access to microsoft windows 2018", CVSSv3: "7.2"},
		{CveID: "CVE-1234-0002", Summary: "Attacker gains remote access to microsoft windows"},
		{CveID: "CVE-1234-0003", Summary: "Attacker gains remote access to microsoft server 2018"},
		{CveID: "CVE-1234-0004", Summary: "Attacker gains remote access to windows 8"},
		{CveID: "CVE-1234-0005", Summary: "Attacker gains remote access to microsoft windows 8", CVSSv3: "9.8"},
		{CveID: "CVE-1234-0006", Summary: "Attacker gains remote access to microsoft windows 7"},
		{CveID: "CVE-1234-0007", Summary: "Attacker gains remote access to microsoft corporation windows 7"},
	}
}

// SeedSQLite writes rows into a sqlite database at path, creating the schema first.
func SeedSQLite(t *testing.T, path string, cpes []model.CPERecord, cves []model.CVERecord, summaries []model.CVESummaryRecord) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, Schema)
	require.NoError(t, err)

	for _, c := range cpes {
		_, err := db.ExecContext(ctx, `INSERT INTO cpe_table (vendor, product, version) VALUES (?, ?, ?)`,
			c.Vendor, c.Product, c.Version)
		require.NoError(t, err)
	}
	for _, c := range cves {
		_, err := db.ExecContext(ctx, `INSERT INTO cve_table (cve_id, vendor, product, version, cvss_v2_score, cvss_v3_score,
			version_start_including, version_start_excluding, version_end_including, version_end_excluding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.CveID, c.Vendor, c.Product, c.Version, nullable(c.CVSSv2), nullable(c.CVSSv3),
			nullable(c.VersionStartIncluding), nullable(c.VersionStartExcluding),
			nullable(c.VersionEndIncluding), nullable(c.VersionEndExcluding))
		require.NoError(t, err)
	}
	for _, s := range summaries {
		_, err := db.ExecContext(ctx, `INSERT INTO summary_table (cve_id, summary, cvss_v2_score, cvss_v3_score) VALUES (?, ?, ?, ?)`,
			s.CveID, s.Summary, nullable(s.CVSSv2), nullable(s.CVSSv3))
		require.NoError(t, err)
	}
}

// ScenarioSQLite creates a temporary sqlite database seeded with the windows scenario and returns its path.
func ScenarioSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cpe_cve.db")
	SeedSQLite(t, path, CPEs(), CVEs(), Summaries())
	return path
}

// ScenarioSQLiteWithNulls is ScenarioSQLite plus dictionary and CVE rows whose
// nullable columns are NULL, as partially ingested feeds leave them.
func ScenarioSQLiteWithNulls(t *testing.T) string {
	t.Helper()
	path := ScenarioSQLite(t)

	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`INSERT INTO cpe_table (vendor, product, version) VALUES ('acme', 'widget', NULL)`,
		`INSERT INTO cpe_table (vendor, product, version) VALUES (NULL, NULL, NULL)`,
		`INSERT INTO cve_table (cve_id, vendor, product, version) VALUES ('CVE-1234-0099', NULL, 'widget', NULL)`,
		`INSERT INTO summary_table (cve_id, summary) VALUES ('CVE-1234-0099', NULL)`,
	} {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
	return path
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
