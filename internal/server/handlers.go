package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/smartdevs17/steelflow-monitor/internal/eventlog"
	"github.com/smartdevs17/steelflow-monitor/internal/gateway"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// healthTimeout bounds the store probe behind /health
const healthTimeout = 5 * time.Second

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Database  string `json:"database"`
	Dialect   string `json:"dialect"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// healthHandler probes store connectivity
func (s *HTTPServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Dialect:   string(s.storage.Dialect()),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.storage.Ping(ctx); err != nil {
		s.logger.WithError(err).Error("Health check failed")
		resp.Message = "Health check failed"
		resp.Database = "disconnected"
		resp.Error = err.Error()
		s.writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	resp.Success = true
	resp.Message = "API is online"
	resp.Database = "connected"
	s.writeJSON(w, http.StatusOK, resp)
}

// queryHandler runs a client statement through the gateway
func (s *HTTPServer) queryHandler(w http.ResponseWriter, r *http.Request) {
	req, err := gateway.DecodeRequest(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rows, err := s.gateway.Execute(r.Context(), req.Query, req.Params...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, rows)
}

// snapshotHandler returns every dashboard metric at once
func (s *HTTPServer) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.aggregator.GetAllMetrics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, snapshot)
}

// totalFilesHandler returns the catalog file count
func (s *HTTPServer) totalFilesHandler(w http.ResponseWriter, r *http.Request) {
	total, err := s.aggregator.TotalFiles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, map[string]int64{"totalFiles": total})
}

// totalEventsHandler returns the log row count
func (s *HTTPServer) totalEventsHandler(w http.ResponseWriter, r *http.Request) {
	total, err := s.aggregator.TotalEvents(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, map[string]int64{"totalEvents": total})
}

// eventSummaryHandler returns the per-event breakdown
func (s *HTTPServer) eventSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reader.GetEventSummary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, summary)
}

// recentLogsHandler returns the newest log entries
func (s *HTTPServer) recentLogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.reader.GetRecentLogs(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, entries)
}

// parseLimit reads ?limit=N. Missing, unparsable and zero values fall back to the default.
func parseLimit(value string) (int, error) {
	if value == "" {
		return eventlog.DefaultLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit == 0 {
		return eventlog.DefaultLimit, nil
	}
	if limit < 0 {
		return 0, utils.NewAppError(utils.ErrCodeBadRequest, "limit must be a positive integer", value)
	}
	return limit, nil
}

// listRootSensitivityHandler returns every declared rule
func (s *HTTPServer) listRootSensitivityHandler(w http.ResponseWriter, r *http.Request) {
	rules, err := s.reader.ListRootSensitivity(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, rules)
}

// rootSensitivityRequest is the body of POST /api/root-sensitivity
type rootSensitivityRequest struct {
	RootPath  string `json:"root_path"`
	Sensitive *int   `json:"sensitive"`
}

// insertRootSensitivityHandler appends a sensitivity rule
func (s *HTTPServer) insertRootSensitivityHandler(w http.ResponseWriter, r *http.Request) {
	var req rootSensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, utils.NewAppError(utils.ErrCodeBadRequest, "Invalid request body", err.Error()))
		return
	}
	if req.Sensitive == nil {
		s.writeError(w, r, utils.NewAppError(utils.ErrCodeBadRequest, "sensitive must be 0 or 1"))
		return
	}

	rule, err := s.writer.InsertRootSensitivity(r.Context(), req.RootPath, *req.Sensitive)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusCreated, rule)
}
