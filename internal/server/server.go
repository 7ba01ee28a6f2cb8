// Package server exposes the dashboard REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/internal/aggregator"
	"github.com/smartdevs17/steelflow-monitor/internal/eventlog"
	"github.com/smartdevs17/steelflow-monitor/internal/gateway"
	"github.com/smartdevs17/steelflow-monitor/internal/metrics"
	"github.com/smartdevs17/steelflow-monitor/internal/sensitivity"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          int           `json:"port"`
	Host          string        `json:"host"`
	CORSOrigin    string        `json:"cors_origin"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	EnableMetrics bool          `json:"enable_metrics"`
}

// HTTPServer represents the HTTP server
type HTTPServer struct {
	config         *ServerConfig
	server         *http.Server
	router         *mux.Router
	handler        http.Handler
	storage        storage.Storage
	gateway        *gateway.Gateway
	aggregator     *aggregator.Aggregator
	reader         *eventlog.Reader
	writer         *sensitivity.Writer
	metricsManager *metrics.Manager
	logger         *logrus.Entry
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewHTTPServer creates a new HTTP server; metricsManager may be nil
func NewHTTPServer(
	config *ServerConfig,
	store storage.Storage,
	gw *gateway.Gateway,
	agg *aggregator.Aggregator,
	reader *eventlog.Reader,
	writer *sensitivity.Writer,
	metricsManager *metrics.Manager,
) (*HTTPServer, error) {
	if store == nil || gw == nil || agg == nil || reader == nil || writer == nil {
		return nil, utils.NewAppError(utils.ErrCodeConfiguration, "HTTP server dependencies are incomplete")
	}

	s := &HTTPServer{
		config:         config,
		storage:        store,
		gateway:        gw,
		aggregator:     agg,
		reader:         reader,
		writer:         writer,
		metricsManager: metricsManager,
		logger:         utils.Component("http"),
		stopCh:         make(chan struct{}),
	}

	s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s, nil
}

// apiPaths lists every route template served under /api
var apiPaths = []string{
	"/health",
	"/query",
	"/metrics",
	"/metrics/files",
	"/metrics/events",
	"/metrics/event-summary",
	"/logs/recent",
	"/root-sensitivity",
}

// setupRouter sets up the HTTP routes
func (s *HTTPServer) setupRouter() {
	s.router = mux.NewRouter()
	s.router.NotFoundHandler = http.HandlerFunc(s.notFoundHandler)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowedHandler)

	if s.metricsManager != nil {
		s.router.Use(s.metricsMiddleware)
	}

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/query", s.queryHandler).Methods(http.MethodPost)

	api.HandleFunc("/metrics", s.snapshotHandler).Methods(http.MethodGet)
	api.HandleFunc("/metrics/files", s.totalFilesHandler).Methods(http.MethodGet)
	api.HandleFunc("/metrics/events", s.totalEventsHandler).Methods(http.MethodGet)
	api.HandleFunc("/metrics/event-summary", s.eventSummaryHandler).Methods(http.MethodGet)

	api.HandleFunc("/logs/recent", s.recentLogsHandler).Methods(http.MethodGet)

	api.HandleFunc("/root-sensitivity", s.listRootSensitivityHandler).Methods(http.MethodGet)
	api.HandleFunc("/root-sensitivity", s.insertRootSensitivityHandler).Methods(http.MethodPost)

	// mux drops a method mismatch once a later route matches the method on another path,
	// so every known path gets a method-agnostic fallback registered after its real routes
	for _, path := range apiPaths {
		api.HandleFunc(path, s.methodNotAllowedHandler)
	}

	if s.config.EnableMetrics && s.metricsManager != nil {
		s.router.Handle("/metrics", s.metricsManager.Handler()).Methods(http.MethodGet)
		s.router.HandleFunc("/metrics", s.methodNotAllowedHandler)
	}

	// These run outside the router so preflight and unmatched requests get them too
	var handler http.Handler = s.router
	handler = corsMiddleware(corsConfig{
		AllowedOrigins:   splitOrigins(s.config.CORSOrigin),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		AllowCredentials: true,
	})(handler)
	handler = s.recoveryMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	s.handler = handler
}

// Handler returns the fully wrapped HTTP handler
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"address":         s.server.Addr,
		"metrics_enabled": s.config.EnableMetrics,
		"cors_origin":     s.config.CORSOrigin,
	}).Info("Starting HTTP server")

	// Populate gauges so they appear on first scrape
	if s.metricsManager != nil {
		s.updateMetrics()
		go s.systemMetricsUpdater()
	}

	errChan := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server error")
			errChan <- err
		}
	}()

	// Give the server a moment to start and check for immediate binding errors
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// systemMetricsUpdater updates system metrics periodically
func (s *HTTPServer) systemMetricsUpdater() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.updateMetrics()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HTTPServer) updateMetrics() {
	s.metricsManager.UpdateSystemMetrics()

	pm := s.metricsManager.GetPrometheusMetrics()
	stats := s.storage.Stats()
	pm.UpdateDatabaseConnections(stats.InUse, stats.Idle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pm.UpdateComponentHealth("storage", s.storage.Ping(ctx) == nil)
}

// Stop stops accepting requests and waits for in-flight ones to finish
func (s *HTTPServer) Stop() error {
	s.logger.Info("Stopping HTTP server")
	s.stopOnce.Do(func() { close(s.stopCh) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
