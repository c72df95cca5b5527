package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/database"
	"github.com/ortelius/pdvd-cvelookup/internal/testutils"
	"github.com/ortelius/pdvd-cvelookup/lookup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var scenarioHits = []string{"CVE-1234-0005", "CVE-1234-0006", "CVE-1234-0007", "CVE-1234-0010"}

func newApp(t *testing.T, store database.Store) *fiber.App {
	t.Helper()
	engine := lookup.NewEngine(store, lookup.DefaultOptions(), zap.NewNop())
	app, err := NewFiberApp(engine, config.ServerConfig{BodyLimit: 1 << 20}, zap.NewNop())
	require.NoError(t, err)
	return app
}

func scenarioApp(t *testing.T) *fiber.App {
	return newApp(t, database.NewMemoryStore(testutils.CPEs(), testutils.CVEs(), testutils.Summaries()))
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHealth(t *testing.T) {
	t.Parallel()
	status, body := do(t, scenarioApp(t), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestPostLookupMap(t *testing.T) {
	t.Parallel()
	status, body := do(t, scenarioApp(t), http.MethodPost, "/api/v1/lookup",
		`{"components": ["Microsoft Windows 1.2.5", "postgresql 9.6"], "items": [{"label": "windows 7", "version": "1.2.5"}]}`)
	require.Equal(t, http.StatusOK, status, string(body))

	var report map[string][]string
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, scenarioHits, report["Microsoft Windows 1.2.5"])
	assert.Equal(t, scenarioHits, report["windows 7"])
	assert.Equal(t, []string{}, report["postgresql 9.6"])
	assert.Equal(t, scenarioHits, report["summary"])
}

func TestPostLookupDetailed(t *testing.T) {
	t.Parallel()
	status, body := do(t, scenarioApp(t), http.MethodPost, "/api/v1/lookup?format=detailed",
		`{"components": ["Microsoft Windows 1.2.5"]}`)
	require.Equal(t, http.StatusOK, status, string(body))

	var result struct {
		Summary []string `json:"summary"`
		Details []struct {
			Input   string            `json:"input"`
			Product map[string]string `json:"product"`
			Outcome string            `json:"outcome"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, scenarioHits, result.Summary)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "matched", result.Details[0].Outcome)
	assert.Equal(t, "windows_8", result.Details[0].Product["product"])
}

func TestPostLookupOSV(t *testing.T) {
	t.Parallel()
	status, body := do(t, scenarioApp(t), http.MethodPost, "/api/v1/lookup?format=osv",
		`{"components": ["Microsoft Windows 1.2.5"]}`)
	require.Equal(t, http.StatusOK, status, string(body))

	var result struct {
		Vulns []struct {
			ID               string                 `json:"id"`
			DatabaseSpecific map[string]interface{} `json:"database_specific"`
		} `json:"vulns"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.Len(t, result.Vulns, 3)
	assert.Equal(t, "CVE-1234-0005", result.Vulns[0].ID)
	assert.Equal(t, "CRITICAL", result.Vulns[0].DatabaseSpecific["severity_rating"])
}

func TestPostLookupBadRequests(t *testing.T) {
	t.Parallel()
	app := scenarioApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/v1/lookup", `{"components": []}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/lookup", `{"components": [`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/lookup?format=xml", `{"components": ["windows 7"]}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPostLookupStoreUnavailable(t *testing.T) {
	t.Parallel()
	store := database.NewMemoryStore(nil, nil, nil).FailWith(errors.New("offline"))
	status, body := do(t, newApp(t, store), http.MethodPost, "/api/v1/lookup", `{"components": ["windows 7"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "reference store unavailable")
}

func TestGetCVE(t *testing.T) {
	t.Parallel()
	app := scenarioApp(t)

	status, body := do(t, app, http.MethodGet, "/api/v1/cve/CVE-1234-0005", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"id":"CVE-1234-0005"`)

	status, _ = do(t, app, http.MethodGet, "/api/v1/cve/CVE-0000-0000", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGraphQLEndpoint(t *testing.T) {
	t.Parallel()
	status, body := do(t, scenarioApp(t), http.MethodPost, "/api/v1/graphql",
		`{"query": "{ cveLookup(components: [\"Microsoft Windows 1.2.5\"]) { summary } }"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t,
		`{"data":{"cveLookup":{"summary":["CVE-1234-0005","CVE-1234-0006","CVE-1234-0007","CVE-1234-0010"]}}}`,
		string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	app := scenarioApp(t)
	do(t, app, http.MethodPost, "/api/v1/lookup", `{"components": ["windows 7"]}`)

	status, body := do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "cvelookup_component_lookups_total")
}

func TestGraphQLEndpointGet(t *testing.T) {
	t.Parallel()
	app := scenarioApp(t)

	status, body := do(t, app, http.MethodGet,
		`/api/v1/graphql?query=%7BcveDetails(ids:%5B%22CVE-1234-0006%22%5D)%7Bcve_id%7D%7D`, "")
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"data":{"cveDetails":[{"cve_id":"CVE-1234-0006"}]}}`, string(body))

	status, _ = do(t, app, http.MethodGet, "/api/v1/graphql", "")
	assert.Equal(t, http.StatusBadRequest, status)
}
