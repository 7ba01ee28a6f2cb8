package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics contains all Prometheus metrics for the monitor API
type PrometheusMetrics struct {
	// Store metrics
	DatabaseOperationsTotal   *prometheus.CounterVec
	DatabaseOperationDuration *prometheus.HistogramVec
	DatabaseConnections       *prometheus.GaugeVec

	// Gateway metrics
	QueriesRejectedTotal *prometheus.CounterVec
	QueryRowsReturned    prometheus.Histogram

	// Aggregator metrics
	SnapshotDuration  prometheus.Histogram
	SnapshotFailures  prometheus.Counter
	SensitiveAccesses prometheus.Gauge

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Application health metrics
	ApplicationUptime prometheus.Gauge
	ComponentHealth   *prometheus.GaugeVec
	MemoryUsage       prometheus.Gauge
	GoroutineCount    prometheus.Gauge
}

// NewPrometheusMetrics creates all metrics and registers them on reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		DatabaseOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steelflow_database_operations_total",
				Help: "Total number of store operations",
			},
			[]string{"operation", "status"},
		),

		DatabaseOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "steelflow_database_operation_duration_seconds",
				Help:    "Duration of store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		DatabaseConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "steelflow_database_connections",
				Help: "Store connection pool usage",
			},
			[]string{"state"},
		),

		QueriesRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steelflow_gateway_queries_rejected_total",
				Help: "Statements rejected by the query gateway",
			},
			[]string{"reason"},
		),

		QueryRowsReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "steelflow_gateway_rows_returned",
				Help:    "Rows returned per accepted statement",
				Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 10000},
			},
		),

		SnapshotDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "steelflow_metric_snapshot_duration_seconds",
				Help:    "Time spent computing a combined metric snapshot",
				Buckets: prometheus.DefBuckets,
			},
		),

		SnapshotFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "steelflow_metric_snapshot_failures_total",
				Help: "Metric snapshots that failed because a sub-query failed",
			},
		),

		SensitiveAccesses: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "steelflow_sensitive_accesses",
				Help: "Sensitive accesses counted by the latest snapshot",
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steelflow_http_requests_total",
				Help: "Total number of HTTP requests received",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "steelflow_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ApplicationUptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "steelflow_application_uptime_seconds",
				Help: "Application uptime in seconds",
			},
		),

		ComponentHealth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "steelflow_component_health",
				Help: "Health status of application components (1=healthy, 0=unhealthy)",
			},
			[]string{"component"},
		),

		MemoryUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "steelflow_memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),

		GoroutineCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "steelflow_goroutines",
				Help: "Number of running goroutines",
			},
		),
	}
}

// registerProcessCollectors adds the standard Go and process collectors to reg
func registerProcessCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordDatabaseOperation records a store operation
func (m *PrometheusMetrics) RecordDatabaseOperation(operation, status string, duration time.Duration) {
	m.DatabaseOperationsTotal.WithLabelValues(operation, status).Inc()
	m.DatabaseOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDatabaseConnections updates the pool usage gauges
func (m *PrometheusMetrics) UpdateDatabaseConnections(inUse, idle int) {
	m.DatabaseConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DatabaseConnections.WithLabelValues("idle").Set(float64(idle))
}

// RecordQueryRejected records a statement refused by the gateway
func (m *PrometheusMetrics) RecordQueryRejected(reason string) {
	m.QueriesRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordQueryRows records the size of an accepted statement's result
func (m *PrometheusMetrics) RecordQueryRows(rows int) {
	m.QueryRowsReturned.Observe(float64(rows))
}

// RecordSnapshot records a combined metrics computation
func (m *PrometheusMetrics) RecordSnapshot(duration time.Duration, sensitiveAccesses int64, err error) {
	m.SnapshotDuration.Observe(duration.Seconds())
	if err != nil {
		m.SnapshotFailures.Inc()
		return
	}
	m.SensitiveAccesses.Set(float64(sensitiveAccesses))
}

// RecordHTTPRequest records an HTTP request
func (m *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateApplicationUptime updates the application uptime metric
func (m *PrometheusMetrics) UpdateApplicationUptime(startTime time.Time) {
	m.ApplicationUptime.Set(time.Since(startTime).Seconds())
}

// UpdateComponentHealth updates the health status of a component
func (m *PrometheusMetrics) UpdateComponentHealth(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.ComponentHealth.WithLabelValues(component).Set(value)
}

// UpdateMemoryUsage updates the memory usage metric
func (m *PrometheusMetrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount updates the goroutine count metric
func (m *PrometheusMetrics) UpdateGoroutineCount(count int) {
	m.GoroutineCount.Set(float64(count))
}
