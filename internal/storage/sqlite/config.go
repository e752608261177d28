package sqlite

import (
	"fmt"

	"report-router/internal/storage"
)

type Config struct {
	DatabasePath string
}

func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

func (c *Config) GetType() string {
	return "sqlite"
}

// GetConnectionString returns the DSN handed to mattn/go-sqlite3. Foreign
// keys are enabled and writers wait up to five seconds on a locked database.
func (c *Config) GetConnectionString() string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.DatabasePath)
}

// ConfigFrom converts any StorageConfig into a SQLite Config.
func ConfigFrom(config storage.StorageConfig) (*Config, error) {
	switch c := config.(type) {
	case *Config:
		return c, nil
	case storage.GenericConfig:
		return &Config{DatabasePath: c.String("path")}, nil
	default:
		return nil, fmt.Errorf("invalid config type for SQLite storage")
	}
}

func DefaultConfig() *Config {
	return &Config{
		DatabasePath: "./report_router.db",
	}
}
