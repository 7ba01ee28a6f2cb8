// File: internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sqlite "modernc.org/sqlite"

	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

func init() {
	// The sensitive-access metrics join logs to the catalog on md5(path), which SQLite lacks.
	sqlite.MustRegisterDeterministicScalarFunction("md5", 1, func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case nil:
			return nil, nil
		case string:
			return utils.PathHash(v), nil
		case []byte:
			return utils.PathHash(string(v)), nil
		default:
			return utils.PathHash(fmt.Sprint(v)), nil
		}
	})
}

// SQLiteStorage implements Storage using an embedded SQLite database
type SQLiteStorage struct {
	sqlStore
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(config *StorageConfig) *SQLiteStorage {
	return &SQLiteStorage{
		sqlStore: sqlStore{
			config:    config,
			logger:    utils.Component("storage").WithField("dialect", DialectSQLite),
			dialect:   DialectSQLite,
			errorCode: sqliteErrorCode,
		},
	}
}

// Connect opens the database file, creating its directory when needed
func (s *SQLiteStorage) Connect() error {
	path := s.config.ConnectionString
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.NewAppError(utils.ErrCodeStore, "Failed to create database directory", err.Error())
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return utils.NewAppError(utils.ErrCodeStore, "Failed to open SQLite database", err.Error())
	}

	s.configurePool(db)

	if err := db.Ping(); err != nil {
		db.Close()
		return utils.NewAppError(utils.ErrCodeStore, "Failed to ping SQLite database", err.Error())
	}

	s.db = db
	s.logger.WithField("path", path).Info("SQLite database connected")

	return nil
}

// Migrate applies the embedded schema migrations
func (s *SQLiteStorage) Migrate() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeStore, "Database not connected")
	}
	return runMigrations(s.db, s.dialect, s.logger)
}

// sqliteDSN appends the pragmas every pooled connection needs.
// Timestamps are written in a sortable text form so range filters work on them.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"
}

func sqliteErrorCode(err error) string {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return strconv.Itoa(sqliteErr.Code())
	}
	return ""
}
