package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

//go:embed queries.yaml
var defaultQueries []byte

// Queries holds the texts used to stream each reference table.
type Queries struct {
	CPELookup     string `yaml:"cpe_lookup"`
	CVELookup     string `yaml:"cve_lookup"`
	SummaryLookup string `yaml:"summary_lookup"`
}

// QueryCatalog maps a backend name to its query texts.
type QueryCatalog map[string]Queries

// LoadQueries reads the query catalog from path, or the built-in catalog when path is empty.
func LoadQueries(path string) (QueryCatalog, error) {
	data := defaultQueries
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read query catalog %s: %w", path, err)
		}
	}
	return ParseQueries(data)
}

// ParseQueries decodes a YAML query catalog.
func ParseQueries(data []byte) (QueryCatalog, error) {
	var catalog QueryCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse query catalog: %w", err)
	}
	return catalog, nil
}

// For returns the queries of backend, failing when any of them is missing.
func (c QueryCatalog) For(backend string) (Queries, error) {
	q, ok := c[backend]
	if !ok {
		return Queries{}, fmt.Errorf("%w: no queries for backend %q", ErrInvalidConfig, backend)
	}
	switch {
	case q.CPELookup == "":
		return q, fmt.Errorf("%w: %s cpe_lookup query is empty", ErrInvalidConfig, backend)
	case q.CVELookup == "":
		return q, fmt.Errorf("%w: %s cve_lookup query is empty", ErrInvalidConfig, backend)
	case q.SummaryLookup == "":
		return q, fmt.Errorf("%w: %s summary_lookup query is empty", ErrInvalidConfig, backend)
	}
	return q, nil
}
