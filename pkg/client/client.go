// Package client talks to the steelflow REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// DefaultTimeout bounds a single request when no http.Client is supplied
const DefaultTimeout = 30 * time.Second

// Client calls the API under a base URL such as http://localhost:3000/api.
// Execute makes it usable wherever a statement executor is expected.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     utils.Component("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Database  string `json:"database"`
	Dialect   string `json:"dialect"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
	Message string          `json:"message"`
}

type queryRequest struct {
	Query  string        `json:"query"`
	Params []interface{} `json:"params,omitempty"`
}

// Health probes the API and its store. A reachable API with a failing store
// returns the status together with an error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !status.Success {
		return &status, utils.NewAppError(utils.ErrCodeStore, "API reports store unavailable", status.Error)
	}
	return &status, nil
}

// Execute runs a read-only statement through POST /query
func (c *Client) Execute(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error) {
	var rows []models.Row
	if err := c.do(ctx, http.MethodPost, "/query", queryRequest{Query: statement, Params: params}, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Row{}
	}
	return rows, nil
}

// Metrics fetches the full metric snapshot
func (c *Client) Metrics(ctx context.Context) (*models.MetricSnapshot, error) {
	var snapshot models.MetricSnapshot
	if err := c.do(ctx, http.MethodGet, "/metrics", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// TotalFiles fetches the catalog file count
func (c *Client) TotalFiles(ctx context.Context) (int64, error) {
	var data struct {
		TotalFiles int64 `json:"totalFiles"`
	}
	if err := c.do(ctx, http.MethodGet, "/metrics/files", nil, &data); err != nil {
		return 0, err
	}
	return data.TotalFiles, nil
}

// TotalEvents fetches the log row count
func (c *Client) TotalEvents(ctx context.Context) (int64, error) {
	var data struct {
		TotalEvents int64 `json:"totalEvents"`
	}
	if err := c.do(ctx, http.MethodGet, "/metrics/events", nil, &data); err != nil {
		return 0, err
	}
	return data.TotalEvents, nil
}

// EventSummary fetches the per-event breakdown
func (c *Client) EventSummary(ctx context.Context) ([]models.EventSummaryRow, error) {
	var summary []models.EventSummaryRow
	if err := c.do(ctx, http.MethodGet, "/metrics/event-summary", nil, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// RecentLogs fetches up to limit entries, newest first; limit <= 0 uses the server default
func (c *Client) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	path := "/logs/recent"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var entries []models.LogEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RootSensitivity lists every declared rule
func (c *Client) RootSensitivity(ctx context.Context) ([]models.RootSensitivityRule, error) {
	var rules []models.RootSensitivityRule
	if err := c.do(ctx, http.MethodGet, "/root-sensitivity", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// InsertRootSensitivity declares rootPath sensitive (1) or not (0)
func (c *Client) InsertRootSensitivity(ctx context.Context, rootPath string, sensitive int) (*models.RootSensitivityRule, error) {
	body := models.RootSensitivityRule{RootPath: rootPath, Sensitive: sensitive}

	var rule models.RootSensitivityRule
	if err := c.do(ctx, http.MethodPost, "/root-sensitivity", body, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("API call")

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", path, resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return responseError(resp.StatusCode, env)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

// responseError rebuilds the server's error taxonomy from a failure envelope
func responseError(status int, env envelope) error {
	message := env.Error
	if message == "" {
		message = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest:
		return utils.NewAppError(utils.ErrCodeBadRequest, message, env.Details)
	case http.StatusForbidden:
		return utils.NewAppError(utils.ErrCodeForbidden, message, env.Details)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return utils.NewAppError(utils.ErrCodeNotFound, message, env.Details)
	}

	if env.Message == "" {
		return utils.NewStoreError(env.Code, message)
	}
	return utils.NewAppError(utils.ErrCodeInternal, message, env.Message)
}
