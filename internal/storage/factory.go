package storage

import (
	"fmt"

	"report-router/internal/common/errors"
	"report-router/internal/config"
)

// NewStorage creates the storage backend selected by cfg.DatabaseType. The
// backend package must have been imported so its factory is registered.
func NewStorage(cfg *config.Config) (Storage, error) {
	var storageConfig StorageConfig
	storageType := cfg.DatabaseType

	switch storageType {
	case "sqlite":
		storageConfig = GenericConfig{
			"type": "sqlite",
			"path": cfg.DatabasePath,
		}

	case "postgres", "postgresql":
		storageType = "postgres"
		storageConfig = GenericConfig{
			"type":     "postgres",
			"host":     cfg.PostgresHost,
			"port":     cfg.PostgresPort,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
		}

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}

	return Create(storageType, storageConfig)
}
