// Package aggregator computes dashboard metrics from the audit log and the catalog.
package aggregator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/smartdevs17/steelflow-monitor/internal/gateway"
	"github.com/smartdevs17/steelflow-monitor/internal/metrics"
	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// Window is the length of the trailing period compared by the change metrics
const Window = 24 * time.Hour

// Aggregator runs the fixed metric statements through an Executor
type Aggregator struct {
	executor       gateway.Executor
	dialect        storage.Dialect
	now            func() time.Time
	metricsManager *metrics.Manager
	logger         *logrus.Entry
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock replaces the clock used to place the rolling windows
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithMetrics records snapshot timings and failures
func WithMetrics(manager *metrics.Manager) Option {
	return func(a *Aggregator) {
		a.metricsManager = manager
	}
}

// New creates an aggregator that issues statements in the given dialect
func New(executor gateway.Executor, dialect storage.Dialect, opts ...Option) *Aggregator {
	a := &Aggregator{
		executor: executor,
		dialect:  dialect,
		now:      time.Now,
		logger:   utils.Component("aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PercentChange compares current against previous as a rounded percentage.
// A zero previous value yields 0.
func PercentChange(current, previous int64) int64 {
	if previous == 0 {
		return 0
	}
	change := float64(current-previous) * 100 / float64(previous)
	return int64(math.Floor(change + 0.5))
}

// TotalFiles counts catalog files
func (a *Aggregator) TotalFiles(ctx context.Context) (int64, error) {
	return a.scalar(ctx, queryTotalFiles)
}

// TotalFilesChange compares files seen in the last window with the window before it
func (a *Aggregator) TotalFilesChange(ctx context.Context) (int64, error) {
	return a.change(ctx, queryTotalFilesChange)
}

// TotalDirectories counts catalog directories
func (a *Aggregator) TotalDirectories(ctx context.Context) (int64, error) {
	return a.scalar(ctx, queryTotalDirectories)
}

// LastSensitiveAccess returns the newest event on a sensitive catalog item, or nil
func (a *Aggregator) LastSensitiveAccess(ctx context.Context) (*time.Time, error) {
	rows, err := a.execute(ctx, queryLastSensitiveAccess)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return models.RowNullTime(rows[0], "last_access")
}

// SensitiveAccesses counts events on sensitive catalog items
func (a *Aggregator) SensitiveAccesses(ctx context.Context) (int64, error) {
	return a.scalar(ctx, querySensitiveAccesses)
}

// SensitiveAccessesChange compares sensitive events in the last window with the window before it
func (a *Aggregator) SensitiveAccessesChange(ctx context.Context) (int64, error) {
	return a.change(ctx, querySensitiveAccessesChange)
}

// TotalStorage sums the size of catalog files in bytes
func (a *Aggregator) TotalStorage(ctx context.Context) (int64, error) {
	return a.scalar(ctx, queryTotalStorage)
}

// TotalStorageChange compares bytes of files seen in the last window with the window before it
func (a *Aggregator) TotalStorageChange(ctx context.Context) (int64, error) {
	return a.change(ctx, queryTotalStorageChange)
}

// TotalEvents counts every logged event
func (a *Aggregator) TotalEvents(ctx context.Context) (int64, error) {
	return a.scalar(ctx, queryTotalEvents)
}

// GetAllMetrics runs all nine metric statements concurrently and assembles a snapshot.
// The first failing statement fails the whole snapshot.
func (a *Aggregator) GetAllMetrics(ctx context.Context) (*models.MetricSnapshot, error) {
	start := time.Now()
	snapshot := &models.MetricSnapshot{
		// no history is kept for directories
		TotalDirectoriesChange: 0,
	}

	g, gctx := errgroup.WithContext(ctx)
	collect := func(name string, dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			v, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = v
			return nil
		})
	}

	collect("totalFiles", &snapshot.TotalFiles, a.TotalFiles)
	collect("totalFilesChange", &snapshot.TotalFilesChange, a.TotalFilesChange)
	collect("totalDirectories", &snapshot.TotalDirectories, a.TotalDirectories)
	collect("sensitiveAccesses", &snapshot.SensitiveAccesses, a.SensitiveAccesses)
	collect("sensitiveAccessesChange", &snapshot.SensitiveAccessesChange, a.SensitiveAccessesChange)
	collect("totalStorage", &snapshot.TotalStorage, a.TotalStorage)
	collect("totalStorageChange", &snapshot.TotalStorageChange, a.TotalStorageChange)
	collect("totalEvents", &snapshot.TotalEvents, a.TotalEvents)
	g.Go(func() error {
		last, err := a.LastSensitiveAccess(gctx)
		if err != nil {
			return fmt.Errorf("lastSensitiveAccess: %w", err)
		}
		snapshot.LastSensitiveAccess = last
		return nil
	})

	err := g.Wait()
	if a.metricsManager != nil {
		a.metricsManager.GetPrometheusMetrics().RecordSnapshot(time.Since(start), snapshot.SensitiveAccesses, err)
	}
	if err != nil {
		a.logger.WithError(err).Error("Failed to compute metrics snapshot")
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"total_events": snapshot.TotalEvents,
		"duration":     time.Since(start),
	}).Debug("Metrics snapshot computed")

	return snapshot, nil
}

func (a *Aggregator) execute(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error) {
	return a.executor.Execute(ctx, a.dialect.Rebind(statement), params...)
}

func (a *Aggregator) scalar(ctx context.Context, statement string) (int64, error) {
	rows, err := a.execute(ctx, statement)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return models.RowInt64(rows[0], "total")
}

func (a *Aggregator) change(ctx context.Context, statement string) (int64, error) {
	now := a.now()
	dayAgo := a.dialect.TimeArg(now.Add(-Window))
	twoDaysAgo := a.dialect.TimeArg(now.Add(-2 * Window))

	rows, err := a.execute(ctx, statement, dayAgo, twoDaysAgo, dayAgo)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	current, err := models.RowInt64(rows[0], "current_value")
	if err != nil {
		return 0, err
	}
	previous, err := models.RowInt64(rows[0], "previous_value")
	if err != nil {
		return 0, err
	}
	return PercentChange(current, previous), nil
}
