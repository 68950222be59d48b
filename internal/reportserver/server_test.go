package reportserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yss-community/strategyharness/internal/harness"
	"github.com/yss-community/strategyharness/internal/reportstore"
)

func newTestServer(t *testing.T) (*reportstore.Store, http.Handler) {
	t.Helper()
	store, err := reportstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, New(store).Router()
}

func seedRun(t *testing.T, store *reportstore.Store, runID string, at time.Time) {
	t.Helper()
	report := &harness.Report{
		RunID:       runID,
		GeneratedAt: at,
		Seed:        42,
		Spins:       1000,
		Records:     []harness.Record{{ID: "flat_red", TypeName: "flatRedStrategy"}},
	}
	require.NoError(t, store.SaveReport(context.Background(), report))
}

func doGet(handler http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	_, handler := newTestServer(t)

	w := doGet(handler, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunsList(t *testing.T) {
	store, handler := newTestServer(t)
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	seedRun(t, store, "run-a", base)
	seedRun(t, store, "run-b", base.Add(time.Hour))

	w := doGet(handler, "/api/runs")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Runs []reportstore.RunSummary `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "run-b", body.Runs[0].RunID)
}

func TestRunsListLimit(t *testing.T) {
	store, handler := newTestServer(t)
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	seedRun(t, store, "run-a", base)
	seedRun(t, store, "run-b", base.Add(time.Hour))

	w := doGet(handler, "/api/runs?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Runs []reportstore.RunSummary `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Runs, 1)
}

func TestRunGet(t *testing.T) {
	store, handler := newTestServer(t)
	seedRun(t, store, "run-a", time.Now().UTC())

	w := doGet(handler, "/api/runs/run-a")
	require.Equal(t, http.StatusOK, w.Code)

	var report harness.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "run-a", report.RunID)
	require.Len(t, report.Records, 1)
}

func TestRunGetNotFound(t *testing.T) {
	_, handler := newTestServer(t)

	w := doGet(handler, "/api/runs/ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunLatest(t *testing.T) {
	store, handler := newTestServer(t)
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	seedRun(t, store, "run-old", base)
	seedRun(t, store, "run-new", base.Add(time.Hour))

	w := doGet(handler, "/api/runs/latest")
	require.Equal(t, http.StatusOK, w.Code)

	var report harness.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "run-new", report.RunID)
}

func TestRunLatestEmpty(t *testing.T) {
	_, handler := newTestServer(t)

	w := doGet(handler, "/api/runs/latest")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
