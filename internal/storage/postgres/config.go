package postgres

import (
	"fmt"
	"net/url"
	"strconv"

	"report-router/internal/storage"
)

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("PostgreSQL host is required")
	}

	if c.Port <= 0 {
		c.Port = 5432 // default PostgreSQL port
	}

	if c.Database == "" {
		return fmt.Errorf("PostgreSQL database name is required")
	}

	if c.Username == "" {
		return fmt.Errorf("PostgreSQL username is required")
	}

	if c.SSLMode == "" {
		c.SSLMode = "prefer"
	}

	return nil
}

func (c *Config) GetType() string {
	return "postgres"
}

// GetConnectionString returns a postgres:// URL understood by pgx.
func (c *Config) GetConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// ConfigFrom converts any StorageConfig into a PostgreSQL Config.
func ConfigFrom(config storage.StorageConfig) (*Config, error) {
	switch c := config.(type) {
	case *Config:
		return c, nil
	case storage.GenericConfig:
		pgConfig := &Config{
			Host:     c.String("host"),
			Database: c.String("database"),
			Username: c.String("username"),
			Password: c.String("password"),
			SSLMode:  c.String("sslmode"),
		}
		if port := c.String("port"); port != "" {
			p, err := strconv.Atoi(port)
			if err != nil {
				return nil, fmt.Errorf("invalid PostgreSQL port %q", port)
			}
			pgConfig.Port = p
		}
		return pgConfig, nil
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}
}

func NewConfigFromURL(connStr string) (*Config, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL URL: %w", err)
	}
	if len(u.Path) < 2 {
		return nil, fmt.Errorf("PostgreSQL URL must name a database")
	}

	config := &Config{
		Host:     u.Hostname(),
		Database: u.Path[1:], // Remove leading slash
		Username: u.User.Username(),
		Port:     5432,
		SSLMode:  "prefer",
	}

	if u.Port() != "" {
		if port, err := strconv.Atoi(u.Port()); err == nil {
			config.Port = port
		}
	}

	if password, ok := u.User.Password(); ok {
		config.Password = password
	}

	if sslMode := u.Query().Get("sslmode"); sslMode != "" {
		config.SSLMode = sslMode
	}

	return config, nil
}

func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		Database: "report_router",
		Username: "postgres",
		Password: "",
		SSLMode:  "prefer",
	}
}
