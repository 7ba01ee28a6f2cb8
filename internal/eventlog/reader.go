// Package eventlog reads the audit log and the sensitivity registry.
package eventlog

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/internal/gateway"
	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// DefaultLimit is used when no positive limit is given
const DefaultLimit = 50

const (
	queryRecentLogs = `
		SELECT id, timestamp, event, path, root_path, details, user_name, hostname,
		       ip_address, synced_to_external, flag
		FROM logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`

	queryEventSummary = `
		SELECT event, COUNT(*) AS event_count,
		       (SELECT COUNT(*) FROM logs) AS grand_total
		FROM logs
		GROUP BY event
		ORDER BY event_count DESC, event ASC`

	queryRootSensitivity = `
		SELECT id, root_path, sensitive, declared_at
		FROM root_sensitivity
		ORDER BY id ASC`
)

// Statements lists every fixed statement the reader issues
var Statements = []string{queryRecentLogs, queryEventSummary, queryRootSensitivity}

// Reader returns unfiltered audit data through an Executor
type Reader struct {
	executor gateway.Executor
	dialect  storage.Dialect
	logger   *logrus.Entry
}

// NewReader creates a reader that issues statements in the given dialect
func NewReader(executor gateway.Executor, dialect storage.Dialect) *Reader {
	return &Reader{
		executor: executor,
		dialect:  dialect,
		logger:   utils.Component("eventlog"),
	}
}

// GetRecentLogs returns up to limit entries, newest first. The limit is not capped.
func (r *Reader) GetRecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := r.executor.Execute(ctx, r.dialect.Rebind(queryRecentLogs), limit)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LogEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := models.LogEntryFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode log row: %w", err)
		}
		entries = append(entries, entry)
	}

	r.logger.WithFields(logrus.Fields{
		"limit":   limit,
		"entries": len(entries),
	}).Debug("Recent logs read")

	return entries, nil
}

// GetEventSummary groups the log by event label, largest group first.
// Percentages are against the whole log at query time, rounded to one decimal.
func (r *Reader) GetEventSummary(ctx context.Context) ([]models.EventSummaryRow, error) {
	rows, err := r.executor.Execute(ctx, r.dialect.Rebind(queryEventSummary))
	if err != nil {
		return nil, err
	}

	summary := make([]models.EventSummaryRow, 0, len(rows))
	for _, row := range rows {
		label, err := models.RowString(row, "event")
		if err != nil {
			return nil, fmt.Errorf("decode summary row: %w", err)
		}
		count, err := models.RowInt64(row, "event_count")
		if err != nil {
			return nil, fmt.Errorf("decode summary row: %w", err)
		}
		total, err := models.RowInt64(row, "grand_total")
		if err != nil {
			return nil, fmt.Errorf("decode summary row: %w", err)
		}

		summary = append(summary, models.EventSummaryRow{
			Event:      models.ParseEventKind(label),
			Count:      count,
			Percentage: Percentage(count, total),
		})
	}

	return summary, nil
}

// ListRootSensitivity returns every declared rule in declaration order
func (r *Reader) ListRootSensitivity(ctx context.Context) ([]models.RootSensitivityRule, error) {
	rows, err := r.executor.Execute(ctx, r.dialect.Rebind(queryRootSensitivity))
	if err != nil {
		return nil, err
	}

	rules := make([]models.RootSensitivityRule, 0, len(rows))
	for _, row := range rows {
		rule, err := models.RootSensitivityRuleFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode sensitivity row: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// Percentage returns count as a share of total in percent with one decimal
func Percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(total)) / 10
}
