package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdevs17/steelflow-monitor/internal/aggregator"
	"github.com/smartdevs17/steelflow-monitor/internal/eventlog"
	"github.com/smartdevs17/steelflow-monitor/internal/gateway"
	"github.com/smartdevs17/steelflow-monitor/internal/metrics"
	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/internal/sensitivity"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/internal/storage/storagetest"
)

const testOrigin = "http://localhost:8080"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Path    string          `json:"path"`
}

func newTestServer(t *testing.T) (*HTTPServer, *storage.SQLiteStorage) {
	t.Helper()

	store := storagetest.NewSQLite(t)
	manager := metrics.NewManager()
	gw := gateway.New(store, manager)
	agg := aggregator.New(gw, store.Dialect(), aggregator.WithMetrics(manager))
	reader := eventlog.NewReader(gw, store.Dialect())
	writer := sensitivity.NewWriter(store)

	srv, err := NewHTTPServer(&ServerConfig{
		Host:          "127.0.0.1",
		Port:          0,
		CORSOrigin:    testOrigin,
		EnableMetrics: true,
	}, store, gw, agg, reader, writer, manager)
	require.NoError(t, err)

	return srv, store
}

func seedLogs(t *testing.T, store *storage.SQLiteStorage, n int) {
	t.Helper()
	faker := gofakeit.New(21)
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	labels := []string{"Created", "Modified", "Deleted", "Renamed"}
	for i := 0; i < n; i++ {
		storagetest.InsertLog(t, store, storagetest.FakeLog(faker, base.Add(time.Duration(i)*time.Minute), labels[i%len(labels)]))
	}
}

func do(t *testing.T, srv *HTTPServer, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	srv, store := newTestServer(t)

	rec, _ := do(t, srv, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.True(t, health.Success)
	assert.Equal(t, "connected", health.Database)
	assert.Equal(t, "sqlite", health.Dialect)
	assert.NotEmpty(t, health.Timestamp)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	require.NoError(t, store.Close())
	rec, env := do(t, srv, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
}

func TestQueryEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	seedLogs(t, store, 4)

	t.Run("select with params", func(t *testing.T) {
		rec, env := do(t, srv, http.MethodPost, "/api/query",
			`{"query":"SELECT COUNT(*) AS total FROM logs WHERE event = ?","params":["Renamed"]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, env.Success)

		var rows []map[string]interface{}
		require.NoError(t, json.Unmarshal(env.Data, &rows))
		require.Len(t, rows, 1)
		assert.EqualValues(t, 1, rows[0]["total"])
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		rec, env := do(t, srv, http.MethodPost, "/api/query", `{"query":"SELECT id FROM logs WHERE id < 0"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, string(env.Data))
	})

	t.Run("not a select", func(t *testing.T) {
		rec, env := do(t, srv, http.MethodPost, "/api/query", `{"query":"PRAGMA table_info(logs)"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	})

	t.Run("keyword in literal", func(t *testing.T) {
		rec, env := do(t, srv, http.MethodPost, "/api/query", `{"query":"SELECT * FROM logs WHERE event = 'Deleted'"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, env.Error, "DELETE")
	})

	t.Run("missing query", func(t *testing.T) {
		rec, env := do(t, srv, http.MethodPost, "/api/query", `{"params":[1]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("non-string query", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodPost, "/api/query", `{"query":["SELECT 1"]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store error keeps native code", func(t *testing.T) {
		rec, env := do(t, srv, http.MethodPost, "/api/query", `{"query":"SELECT * FROM nowhere"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, env.Success)
		assert.Contains(t, env.Error, "nowhere")
		assert.Equal(t, "1", env.Code)
	})
}

func TestMetricEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	seedLogs(t, store, 8)
	storagetest.InsertCatalogItem(t, store, models.CatalogItem{
		ItemPath:  `C:\Data\report.pdf`,
		ItemType:  models.ItemTypeFile,
		SizeBytes: storagetest.Int64(2048),
		LastSeen:  time.Now().UTC(),
	})

	rec, env := do(t, srv, http.MethodGet, "/api/metrics/files", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalFiles":1}`, string(env.Data))

	rec, env = do(t, srv, http.MethodGet, "/api/metrics/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalEvents":8}`, string(env.Data))

	rec, env = do(t, srv, http.MethodGet, "/api/metrics/event-summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary []struct {
		Event      string  `json:"event"`
		Count      int64   `json:"count"`
		Percentage float64 `json:"percentage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	require.Len(t, summary, 4)
	for _, row := range summary {
		assert.Equal(t, int64(2), row.Count)
		assert.Equal(t, 25.0, row.Percentage)
	}

	rec, env = do(t, srv, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.MetricSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, int64(1), snapshot.TotalFiles)
	assert.Equal(t, int64(2048), snapshot.TotalStorage)
	assert.Equal(t, int64(8), snapshot.TotalEvents)
	assert.Nil(t, snapshot.LastSensitiveAccess)
}

func TestRecentLogsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	seedLogs(t, store, 7)

	rec, env := do(t, srv, http.MethodGet, "/api/logs/recent?limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.LogEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))

	for _, target := range []string{"/api/logs/recent", "/api/logs/recent?limit=abc", "/api/logs/recent?limit=0"} {
		rec, env = do(t, srv, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		assert.Len(t, entries, 7, target)
	}

	rec, env = do(t, srv, http.MethodGet, "/api/logs/recent?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestRootSensitivityEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"root_path":"C:\\Data\\HR","sensitive":1}`
	for i := 0; i < 2; i++ {
		rec, env := do(t, srv, http.MethodPost, "/api/root-sensitivity", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.True(t, env.Success)
	}

	rec, env := do(t, srv, http.MethodGet, "/api/root-sensitivity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []models.RootSensitivityRule
	require.NoError(t, json.Unmarshal(env.Data, &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, `C:\Data\HR`, rules[1].RootPath)

	bad := []string{
		`{"root_path":"","sensitive":1}`,
		`{"root_path":"C:\\Data","sensitive":3}`,
		`{"root_path":"C:\\Data"}`,
		`{"root_path":"` + strings.Repeat("x", models.MaxRootPathLength+1) + `","sensitive":0}`,
		`not json`,
	}
	for _, b := range bad {
		rec, env := do(t, srv, http.MethodPost, "/api/root-sensitivity", b)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	}
}

func TestUnmatchedRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "/api/nope", env.Path)

	wrongMethods := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/query"},
		{http.MethodPost, "/api/metrics/files"},
		{http.MethodPost, "/api/metrics"},
		{http.MethodDelete, "/api/logs/recent"},
		{http.MethodPut, "/api/root-sensitivity"},
		{http.MethodPost, "/api/health"},
		{http.MethodPost, "/metrics"},
	}
	for _, tc := range wrongMethods {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec, env := do(t, srv, tc.method, tc.target, "")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "Method not allowed", env.Error)
			assert.Equal(t, tc.target, env.Path)
		})
	}

	t.Run("without metrics", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		gw := gateway.New(store, nil)
		bare, err := NewHTTPServer(&ServerConfig{Host: "127.0.0.1", CORSOrigin: testOrigin}, store, gw,
			aggregator.New(gw, store.Dialect()), eventlog.NewReader(gw, store.Dialect()),
			sensitivity.NewWriter(store), nil)
		require.NoError(t, err)

		rec, _ := do(t, bare, http.MethodGet, "/api/query", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

		rec, _ = do(t, bare, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error","message":"boom"}`, rec.Body.String())
}

func TestPrometheusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/query", `{"query":"DROP TABLE logs"}`)
	do(t, srv, http.MethodGet, "/api/metrics/events", "")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `reason="not_select"`)
	assert.Contains(t, body, `path="/api/metrics/events"`)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "", want: 50},
		{value: "10", want: 10},
		{value: "100000", want: 100000},
		{value: "0", want: 50},
		{value: "ten", want: 50},
		{value: "-3", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLimit(tt.value)
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}
