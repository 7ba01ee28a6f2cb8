// File: internal/storage/factory.go
package storage

import (
	"strings"

	"github.com/smartdevs17/steelflow-monitor/internal/config"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	if err := ValidateStorageConfig(cfg); err != nil {
		return nil, err
	}

	storageConfig := &StorageConfig{
		Type:           cfg.Type,
		MaxConnections: cfg.MaxConnections,
		MaxIdleTime:    cfg.MaxIdleTime,
	}

	switch strings.ToLower(cfg.Type) {
	case "sqlite":
		storageConfig.ConnectionString = cfg.Path
		return NewSQLiteStorage(storageConfig), nil
	default:
		storageConfig.ConnectionString = PostgresDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		return NewPostgreSQLStorage(storageConfig), nil
	}
}

// ValidateStorageConfig validates storage configuration
func ValidateStorageConfig(cfg *config.StorageConfig) error {
	if cfg.Type == "" {
		return utils.NewAppError(utils.ErrCodeConfiguration, "Storage type is required")
	}

	if cfg.MaxConnections <= 0 {
		return utils.NewAppError(utils.ErrCodeConfiguration, "Max connections must be positive")
	}

	if _, err := ParseDialect(cfg.Type); err != nil {
		return utils.NewAppError(utils.ErrCodeConfiguration,
			"Unsupported storage type",
			"Supported types: sqlite, postgres, postgresql")
	}

	if strings.EqualFold(cfg.Type, "sqlite") && cfg.Path == "" {
		return utils.NewAppError(utils.ErrCodeConfiguration, "SQLite path is required")
	}

	return nil
}
