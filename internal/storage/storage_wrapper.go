package storage

import (
	"context"
	"time"

	"github.com/smartdevs17/steelflow-monitor/internal/metrics"
	"github.com/smartdevs17/steelflow-monitor/internal/models"
)

// StorageWithMetrics wraps a storage implementation with metrics
type StorageWithMetrics struct {
	Storage
	metricsManager *metrics.Manager
}

// NewStorageWithMetrics creates a storage wrapper with metrics
func NewStorageWithMetrics(storage Storage, metricsManager *metrics.Manager) *StorageWithMetrics {
	return &StorageWithMetrics{
		Storage:        storage,
		metricsManager: metricsManager,
	}
}

// Query executes a statement and records metrics
func (s *StorageWithMetrics) Query(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error) {
	start := time.Now()

	rows, err := s.Storage.Query(ctx, statement, params...)

	s.record("select", err, start)
	return rows, err
}

// InsertRootSensitivity stores a rule and records metrics
func (s *StorageWithMetrics) InsertRootSensitivity(ctx context.Context, rule *models.RootSensitivityRule) (int64, error) {
	start := time.Now()

	id, err := s.Storage.InsertRootSensitivity(ctx, rule)

	s.record("insert", err, start)
	return id, err
}

func (s *StorageWithMetrics) record(operation string, err error, start time.Time) {
	if s.metricsManager == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metricsManager.GetPrometheusMetrics().RecordDatabaseOperation(operation, status, time.Since(start))
}
