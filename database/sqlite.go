package database

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver
	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/model"
)

// SQLStore reads the reference tables through database/sql, pulling rows in pages.
type SQLStore struct {
	db       *sqlx.DB
	queries  config.Queries
	pageSize int
}

type cpeRow struct {
	Vendor  sql.NullString `db:"vendor"`
	Product sql.NullString `db:"product"`
	Version sql.NullString `db:"version"`
}

func (r cpeRow) record() model.CPERecord {
	return model.CPERecord{Vendor: r.Vendor.String, Product: r.Product.String, Version: r.Version.String}
}

type cveRow struct {
	CveID                 string         `db:"cve_id"`
	Vendor                sql.NullString `db:"vendor"`
	Product               sql.NullString `db:"product"`
	Version               sql.NullString `db:"version"`
	CVSSv2                sql.NullString `db:"cvss_v2_score"`
	CVSSv3                sql.NullString `db:"cvss_v3_score"`
	VersionStartIncluding sql.NullString `db:"version_start_including"`
	VersionStartExcluding sql.NullString `db:"version_start_excluding"`
	VersionEndIncluding   sql.NullString `db:"version_end_including"`
	VersionEndExcluding   sql.NullString `db:"version_end_excluding"`
}

func (r cveRow) record() model.CVERecord {
	return model.CVERecord{
		CveID:                 r.CveID,
		Vendor:                r.Vendor.String,
		Product:               r.Product.String,
		Version:               r.Version.String,
		CVSSv2:                r.CVSSv2.String,
		CVSSv3:                r.CVSSv3.String,
		VersionStartIncluding: r.VersionStartIncluding.String,
		VersionStartExcluding: r.VersionStartExcluding.String,
		VersionEndIncluding:   r.VersionEndIncluding.String,
		VersionEndExcluding:   r.VersionEndExcluding.String,
	}
}

type summaryRow struct {
	CveID   string         `db:"cve_id"`
	Summary sql.NullString `db:"summary"`
	CVSSv2  sql.NullString `db:"cvss_v2_score"`
	CVSSv3  sql.NullString `db:"cvss_v3_score"`
}

func (r summaryRow) record() model.CVESummaryRecord {
	return model.CVESummaryRecord{CveID: r.CveID, Summary: r.Summary.String, CVSSv2: r.CVSSv2.String, CVSSv3: r.CVSSv3.String}
}

// OpenSQLite opens the sqlite reference database at path read-only.
func OpenSQLite(ctx context.Context, path string, queries config.Queries, pageSize int) (*SQLStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reference database %s: %w", path, err)
	}
	db, err := sqlx.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLStore(db, queries, pageSize), nil
}

// NewSQLStore wraps an open connection.
func NewSQLStore(db *sqlx.DB, queries config.Queries, pageSize int) *SQLStore {
	if pageSize <= 0 {
		pageSize = 10000
	}
	return &SQLStore{db: db, queries: queries, pageSize: pageSize}
}

// CPEs streams the distinct (vendor, product, version) dictionary rows.
func (s *SQLStore) CPEs(ctx context.Context) iter.Seq2[model.CPERecord, error] {
	return queryRows(ctx, s.db, "cpe_lookup", s.queries.CPELookup, s.pageSize, cpeRow.record)
}

// CVEs streams the CVE table.
func (s *SQLStore) CVEs(ctx context.Context) iter.Seq2[model.CVERecord, error] {
	return queryRows(ctx, s.db, "cve_lookup", s.queries.CVELookup, s.pageSize, cveRow.record)
}

// Summaries streams the summary table.
func (s *SQLStore) Summaries(ctx context.Context) iter.Seq2[model.CVESummaryRecord, error] {
	return queryRows(ctx, s.db, "summary_lookup", s.queries.SummaryLookup, s.pageSize, summaryRow.record)
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// queryRows runs query and yields its rows converted to T, scanning at most
// pageSize rows ahead of the consumer.
func queryRows[R any, T any](ctx context.Context, db *sqlx.DB, name, query string, pageSize int, convert func(R) T) iter.Seq2[T, error] {
	return once(func(yield func(T, error) bool) {
		var zero T
		rows, err := db.QueryxContext(ctx, query)
		if err != nil {
			yield(zero, unavailable(name, err))
			return
		}
		defer rows.Close()

		page := make([]T, 0, pageSize)
		for {
			page = page[:0]
			for len(page) < pageSize && rows.Next() {
				var r R
				if err := rows.StructScan(&r); err != nil {
					yield(zero, unavailable(name, err))
					return
				}
				page = append(page, convert(r))
			}
			for _, item := range page {
				if !yield(item, nil) {
					return
				}
			}
			if len(page) < pageSize {
				break
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, unavailable(name, err))
		}
	})
}
