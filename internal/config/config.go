// Package config provides configuration management for the report router.
// It loads configuration from environment variables with sensible defaults
// and validates it so the application refuses to start with unsafe settings.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FORMAT: "console" or "json" (default: console)
//   - LOG_FILE: Append log output to this file instead of stdout
//
// Filesystem Layout:
//   - BASE_DIR: Root of the managed tree (default: ./data)
//   - INCOMING_DIR: Drop folder scanned for pending reports (default: BASE_DIR/incoming)
//   - REPORTS_DIR: Root under which destination folders live (default: BASE_DIR/reports)
//
// Routing:
//   - RULES_SOURCE: "database" or "file" (default: database)
//   - RULES_FILE: YAML rules file, required when RULES_SOURCE=file
//   - ROUTING_SCHEDULE: Cron expression for unattended passes (empty disables)
//   - MOVE_TIMEOUT: Upper bound for a single file move (default: 30s)
//   - LOCK_TTL: Expiry of the distributed execution lock (default: 5m)
//
// Database Configuration:
//   - DATABASE_TYPE: "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./report_router.db)
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB, POSTGRES_USER,
//     POSTGRES_PASSWORD, POSTGRES_SSL_MODE
//
// Redis Configuration (optional, enables the distributed lock):
//   - REDIS_ADDRESS: Redis server address (empty disables Redis)
//   - REDIS_PASSWORD, REDIS_DB (0-15), REDIS_POOL_SIZE
//
// Events:
//   - EVENTS_BROKER: "none", "redis" or "rabbitmq" (default: none)
//   - RABBITMQ_URL: AMQP URL, required when EVENTS_BROKER=rabbitmq
//   - EVENTS_EXCHANGE: Fanout exchange name (default: reports.routed)
//
// Security:
//   - JWT_SECRET: HS256 secret for bearer tokens (optional, minimum 32 characters)
//   - RATE_LIMIT_RPS: Sustained API requests per second per caller (default: 20, 0 disables)
//   - RATE_LIMIT_BURST: Bucket size per caller (default: 40)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all configuration values for the report router.
// Load populates it from the environment; call Validate before use.
type Config struct {
	// Application settings
	Port     string
	LogLevel string

	// Filesystem layout
	BaseDir     string
	IncomingDir string
	ReportsDir  string

	// Routing
	RulesSource     string // "database" or "file"
	RulesFile       string
	RoutingSchedule string // cron expression, empty disables the scheduler
	MoveTimeout     string
	LockTTL         string

	// Database configuration
	DatabaseType     string // "sqlite" or "postgres"
	DatabasePath     string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	// Redis configuration for the distributed execution lock
	RedisAddress  string
	RedisPassword string
	RedisDB       string
	RedisPoolSize string

	// Event publishing
	EventsBroker   string // "none", "redis" or "rabbitmq"
	RabbitMQURL    string
	EventsExchange string

	// JWTSecret verifies bearer tokens carrying the acting principal
	JWTSecret string

	// Per-caller API rate limit
	RateLimitRPS   string
	RateLimitBurst string
}

// Load creates a new Config with values taken from environment variables.
// Unset variables fall back to defaults. Directory defaults are derived from
// BASE_DIR so overriding BASE_DIR alone relocates the whole tree.
func Load() *Config {
	baseDir := getEnv("BASE_DIR", "./data")

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BaseDir:     baseDir,
		IncomingDir: getEnv("INCOMING_DIR", filepath.Join(baseDir, "incoming")),
		ReportsDir:  getEnv("REPORTS_DIR", filepath.Join(baseDir, "reports")),

		RulesSource:     getEnv("RULES_SOURCE", "database"),
		RulesFile:       getEnv("RULES_FILE", ""),
		RoutingSchedule: getEnv("ROUTING_SCHEDULE", ""),
		MoveTimeout:     getEnv("MOVE_TIMEOUT", "30s"),
		LockTTL:         getEnv("LOCK_TTL", "5m"),

		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./report_router.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "report_router"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		EventsBroker:   getEnv("EVENTS_BROKER", "none"),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "reports.routed"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RateLimitRPS:   getEnv("RATE_LIMIT_RPS", "20"),
		RateLimitBurst: getEnv("RATE_LIMIT_BURST", "40"),
	}
}

// getEnv retrieves an environment variable value or returns defaultValue if
// it is not set or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks required fields, value formats and cross-field
// dependencies. It returns the first problem found.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.IncomingDir == "" || c.ReportsDir == "" {
		return fmt.Errorf("INCOMING_DIR and REPORTS_DIR must not be empty")
	}
	if filepath.Clean(c.IncomingDir) == filepath.Clean(c.ReportsDir) {
		return fmt.Errorf("INCOMING_DIR and REPORTS_DIR must be different directories")
	}

	switch c.RulesSource {
	case "database":
	case "file":
		if c.RulesFile == "" {
			return fmt.Errorf("RULES_FILE is required when RULES_SOURCE is 'file'")
		}
	default:
		return fmt.Errorf("RULES_SOURCE must be 'database' or 'file'")
	}

	if c.RoutingSchedule != "" {
		if _, err := cron.ParseStandard(c.RoutingSchedule); err != nil {
			return fmt.Errorf("ROUTING_SCHEDULE must be a valid cron expression: %v", err)
		}
	}

	if d, err := time.ParseDuration(c.MoveTimeout); err != nil || d <= 0 {
		return fmt.Errorf("MOVE_TIMEOUT must be a positive duration (e.g., '30s')")
	}
	if d, err := time.ParseDuration(c.LockTTL); err != nil || d <= 0 {
		return fmt.Errorf("LOCK_TTL must be a positive duration (e.g., '5m')")
	}

	switch c.DatabaseType {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.IsPostgres() {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	}

	if c.RedisEnabled() {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	switch c.EventsBroker {
	case "none":
	case "redis":
		if !c.RedisEnabled() {
			return fmt.Errorf("REDIS_ADDRESS is required when EVENTS_BROKER is 'redis'")
		}
	case "rabbitmq":
		if c.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required when EVENTS_BROKER is 'rabbitmq'")
		}
		if c.EventsExchange == "" {
			return fmt.Errorf("EVENTS_EXCHANGE must not be empty")
		}
	default:
		return fmt.Errorf("EVENTS_BROKER must be 'none', 'redis' or 'rabbitmq'")
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long for security")
	}

	if rps, err := strconv.ParseFloat(c.RateLimitRPS, 64); err != nil || rps < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number")
	}
	if burst, err := strconv.Atoi(c.RateLimitBurst); err != nil || burst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be a non-negative integer")
	}

	return nil
}

// IsPostgres reports whether the PostgreSQL backend is selected.
func (c *Config) IsPostgres() bool {
	return c.DatabaseType == "postgres" || c.DatabaseType == "postgresql"
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

// MoveTimeoutDuration returns MOVE_TIMEOUT parsed, or 30s if it is invalid.
func (c *Config) MoveTimeoutDuration() time.Duration {
	return parseDuration(c.MoveTimeout, 30*time.Second)
}

// LockTTLDuration returns LOCK_TTL parsed, or 5m if it is invalid.
func (c *Config) LockTTLDuration() time.Duration {
	return parseDuration(c.LockTTL, 5*time.Minute)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// RateLimit returns the per-caller request rate and burst. Invalid values
// disable limiting.
func (c *Config) RateLimit() (float64, int) {
	rps, err := strconv.ParseFloat(c.RateLimitRPS, 64)
	if err != nil || rps < 0 {
		return 0, 0
	}
	burst, err := strconv.Atoi(c.RateLimitBurst)
	if err != nil || burst < 0 {
		return 0, 0
	}
	return rps, burst
}
