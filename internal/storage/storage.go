// File: internal/storage/storage.go
package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
)

// Storage is the owned handle on the relational store and its connection pool.
// Lifecycle: Connect, serve, Close (drains the pool).
type Storage interface {
	// Connection management
	Connect() error
	Close() error
	Ping(ctx context.Context) error
	Migrate() error
	Dialect() Dialect
	Stats() sql.DBStats

	// Query executes a statement with positional parameters and returns the rows verbatim
	Query(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error)

	// InsertRootSensitivity appends a sensitivity declaration and returns its id
	InsertRootSensitivity(ctx context.Context, rule *models.RootSensitivityRule) (int64, error)
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type             string        `json:"type"`
	ConnectionString string        `json:"connection_string"`
	MaxConnections   int           `json:"max_connections"`
	MaxIdleTime      time.Duration `json:"max_idle_time"`
}
