// Package gateway forwards read-only statements to the store.
package gateway

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/internal/metrics"
	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// logPrefixLength bounds how much of a statement is written to the log
const logPrefixLength = 100

// Executor runs a validated statement and returns its rows.
// Gateway implements it in-process; pkg/client implements it over HTTP.
type Executor interface {
	Execute(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error)
}

// Querier is the part of the store the gateway needs
type Querier interface {
	Query(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error)
}

// Gateway validates statements and forwards accepted ones to the store.
// It holds no per-request state and never retries.
type Gateway struct {
	store          Querier
	metricsManager *metrics.Manager
	logger         *logrus.Entry
}

// New creates a gateway in front of store; metricsManager may be nil
func New(store Querier, metricsManager *metrics.Manager) *Gateway {
	return &Gateway{
		store:          store,
		metricsManager: metricsManager,
		logger:         utils.Component("gateway"),
	}
}

// Execute validates statement and runs it with positional params.
// Store failures are returned immediately as STORE_ERROR.
func (g *Gateway) Execute(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error) {
	if statement == "" {
		return nil, utils.NewAppError(utils.ErrCodeBadRequest, "Query is missing or invalid")
	}

	if rejection := CheckStatement(statement); rejection != nil {
		if g.metricsManager != nil {
			g.metricsManager.GetPrometheusMetrics().RecordQueryRejected(rejection.Reason)
		}
		g.logger.WithFields(logrus.Fields{
			"statement": prefix(statement),
			"reason":    rejection.Reason,
			"keyword":   rejection.Keyword,
		}).Warn("Statement rejected")
		return nil, rejection.Err()
	}

	start := time.Now()
	rows, err := g.store.Query(ctx, statement, params...)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"statement": prefix(statement),
			"error":     err.Error(),
		}).Error("Statement failed")
		return nil, err
	}

	if g.metricsManager != nil {
		g.metricsManager.GetPrometheusMetrics().RecordQueryRows(len(rows))
	}
	g.logger.WithFields(logrus.Fields{
		"statement": prefix(statement),
		"rows":      len(rows),
		"duration":  time.Since(start),
	}).Debug("Statement executed")

	return rows, nil
}

func prefix(statement string) string {
	runes := []rune(statement)
	if len(runes) <= logPrefixLength {
		return statement
	}
	return string(runes[:logPrefixLength]) + "..."
}
