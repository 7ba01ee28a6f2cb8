package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// runMigrations brings the schema up to the latest embedded version.
// The migrate instance is not closed: the caller owns db.
func runMigrations(db *sql.DB, dialect Dialect, logger *logrus.Entry) error {
	sourceDriver, err := iofs.New(migrationFiles, "migrations/"+string(dialect))
	if err != nil {
		return utils.NewAppError(utils.ErrCodeStore, "Failed to read migration files", err.Error())
	}

	var dbDriver database.Driver
	switch dialect {
	case DialectPostgres:
		dbDriver, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	default:
		dbDriver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}
	if err != nil {
		sourceDriver.Close()
		return utils.NewAppError(utils.ErrCodeStore, "Failed to create migration driver", err.Error())
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(dialect), dbDriver)
	if err != nil {
		sourceDriver.Close()
		return utils.NewAppError(utils.ErrCodeStore, "Failed to create migrate instance", err.Error())
	}

	logger.Info("Starting database migrations")

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return utils.NewAppError(utils.ErrCodeStore, "Migration failed", err.Error())
	}

	version, dirty, err := m.Version()
	if err != nil {
		return utils.NewAppError(utils.ErrCodeStore, "Failed to read schema version", err.Error())
	}
	if dirty {
		return utils.NewAppError(utils.ErrCodeStore, "Database schema is dirty",
			fmt.Sprintf("version %d", version))
	}

	logger.WithField("version", version).Info("Database migrations completed")
	return nil
}
