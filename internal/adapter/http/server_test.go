package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/zarr-catalog-etl/internal/adapter/http"
	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
	"github.com/couchcryptid/zarr-catalog-etl/internal/pipeline"
)

type mockBuilds struct {
	err     error
	summary *pipeline.Summary
}

func (m *mockBuilds) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockBuilds) LastSummary() (pipeline.Summary, bool) {
	if m.summary == nil {
		return pipeline.Summary{}, false
	}
	return *m.summary, true
}

func newTestServer(b *mockBuilds) *httpadapter.Server {
	return httpadapter.NewServer(":0", b, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(&mockBuilds{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(&mockBuilds{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(&mockBuilds{err: fmt.Errorf("no catalog build has completed yet")}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no catalog build has completed yet", body["error"])
}

func TestStatusReturnsLastSummary(t *testing.T) {
	sum := &pipeline.Summary{
		RunID:       "run-1",
		Catalog:     "era-ren-collection",
		Records:     12,
		Invalid:     1,
		Failures:    []domain.Failure{{InvalidAsset: "s3://wfclimres/bad/.zmetadata", Traceback: "expected 8 segments"}},
		CatalogFile: "https://wfclimres.s3.amazonaws.com/era/era-ren-collection.csv",
		Patched:     true,
	}
	rec := serve(newTestServer(&mockBuilds{summary: sum}), "/status")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body["run_id"])
	assert.InDelta(t, 12, body["records"], 0)
	assert.Equal(t, sum.CatalogFile, body["catalog_file"])
	assert.Len(t, body["invalid_assets"], 1)
}

func TestStatusReturns404BeforeFirstBuild(t *testing.T) {
	rec := serve(newTestServer(&mockBuilds{}), "/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(&mockBuilds{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
