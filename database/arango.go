package database

import (
	"context"
	"crypto/tls"
	"iter"
	"net"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/model"
	"go.uber.org/zap"
)

// ArangoStore reads the reference collections from ArangoDB with AQL cursors.
type ArangoStore struct {
	client    arangodb.Client
	db        arangodb.Database
	queries   config.Queries
	batchSize int
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// OpenArango connects to the server and selects the reference database. It does
// not create anything; the collections are populated by the ingestion pipeline.
func OpenArango(ctx context.Context, cfg config.ArangoConfig, queries config.Queries, batchSize int, logger *zap.Logger) (*ArangoStore, error) {
	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, cfg.User, cfg.Password))
	client := arangodb.NewClient(conn)

	versionInfo, err := client.Version(ctx)
	if err != nil {
		return nil, err
	}
	logger.Sugar().Infof("Database has version '%s' and license '%s'", versionInfo.Version, versionInfo.License)

	var options arangodb.GetDatabaseOptions
	db, err := client.GetDatabase(ctx, cfg.Database, &options)
	if err != nil {
		return nil, err
	}
	return &ArangoStore{client: client, db: db, queries: queries, batchSize: batchSize}, nil
}

// CPEs streams the distinct (vendor, product, version) dictionary documents.
func (s *ArangoStore) CPEs(ctx context.Context) iter.Seq2[model.CPERecord, error] {
	return cursorRows[model.CPERecord](ctx, s.db, "cpe_lookup", s.queries.CPELookup, s.batchSize)
}

// CVEs streams the CVE collection.
func (s *ArangoStore) CVEs(ctx context.Context) iter.Seq2[model.CVERecord, error] {
	return cursorRows[model.CVERecord](ctx, s.db, "cve_lookup", s.queries.CVELookup, s.batchSize)
}

// Summaries streams the summary collection.
func (s *ArangoStore) Summaries(ctx context.Context) iter.Seq2[model.CVESummaryRecord, error] {
	return cursorRows[model.CVESummaryRecord](ctx, s.db, "summary_lookup", s.queries.SummaryLookup, s.batchSize)
}

// Ping asks the server for its version.
func (s *ArangoStore) Ping(ctx context.Context) error {
	if _, err := s.client.Version(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close is a no-op; the HTTP connection has no session to release.
func (s *ArangoStore) Close() error {
	return nil
}

// cursorRows runs an AQL query and yields its documents, letting the server send
// batchSize documents per round trip.
func cursorRows[T any](ctx context.Context, db arangodb.Database, name, query string, batchSize int) iter.Seq2[T, error] {
	return once(func(yield func(T, error) bool) {
		var zero T
		cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{BatchSize: batchSize})
		if err != nil {
			yield(zero, unavailable(name, err))
			return
		}
		defer cursor.Close()

		for cursor.HasMore() {
			var doc T
			if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
				yield(zero, unavailable(name, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	})
}
