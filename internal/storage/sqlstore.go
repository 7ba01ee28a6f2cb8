package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// sqlStore holds the database/sql plumbing shared by every backend
type sqlStore struct {
	db        *sql.DB
	config    *StorageConfig
	logger    *logrus.Entry
	dialect   Dialect
	errorCode func(error) string
}

func (s *sqlStore) configurePool(db *sql.DB) {
	db.SetMaxOpenConns(s.config.MaxConnections)
	db.SetMaxIdleConns(s.config.MaxConnections / 2)
	db.SetConnMaxIdleTime(s.config.MaxIdleTime)
}

// Close drains the pool and closes the database handle
func (s *sqlStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.logger.Info("Database connection pool closed")
		return err
	}
	return nil
}

// Ping checks database connectivity
func (s *sqlStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeStore, "Database not connected")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return s.storeError(err)
	}
	return nil
}

// Dialect returns the SQL dialect of the store
func (s *sqlStore) Dialect() Dialect {
	return s.dialect
}

// Stats returns connection pool statistics
func (s *sqlStore) Stats() sql.DBStats {
	if s.db == nil {
		return sql.DBStats{}
	}
	return s.db.Stats()
}

// DB exposes the underlying handle for tooling and fixtures
func (s *sqlStore) DB() *sql.DB {
	return s.db
}

// Query executes a statement and returns every row keyed by column name
func (s *sqlStore) Query(ctx context.Context, statement string, params ...interface{}) ([]models.Row, error) {
	if s.db == nil {
		return nil, utils.NewAppError(utils.ErrCodeStore, "Database not connected")
	}

	rows, err := s.db.QueryContext(ctx, statement, params...)
	if err != nil {
		return nil, s.storeError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, s.storeError(err)
	}

	result := make([]models.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		targets := make([]interface{}, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, s.storeError(err)
		}

		row := make(models.Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, s.storeError(err)
	}

	return result, nil
}

// InsertRootSensitivity appends one declaration using bound parameters
func (s *sqlStore) InsertRootSensitivity(ctx context.Context, rule *models.RootSensitivityRule) (int64, error) {
	if s.db == nil {
		return 0, utils.NewAppError(utils.ErrCodeStore, "Database not connected")
	}

	query := s.dialect.Rebind(`INSERT INTO root_sensitivity (root_path, sensitive) VALUES (?, ?) RETURNING id`)

	var id int64
	if err := s.db.QueryRowContext(ctx, query, rule.RootPath, rule.Sensitive).Scan(&id); err != nil {
		return 0, s.storeError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":        id,
		"root_path": rule.RootPath,
		"sensitive": rule.Sensitive,
	}).Info("Root sensitivity rule stored")

	return id, nil
}

// storeError converts a driver error into a STORE_ERROR keeping the native code
func (s *sqlStore) storeError(err error) error {
	code := ""
	if s.errorCode != nil {
		code = s.errorCode(err)
	}
	appErr := utils.NewStoreError(code, err.Error())
	return fmt.Errorf("%s store: %w", s.dialect, appErr)
}
