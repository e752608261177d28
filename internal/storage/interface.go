// Package storage provides the database abstraction for the report router.
//
// Two backends implement Storage through a registry of factories: SQLite via
// mattn/go-sqlite3 and PostgreSQL via the pgx database/sql driver. Both keep
// the same two tables:
//   - path_rules: prefix to destination folder mappings consumed by the
//     routing engine as its rule snapshot
//   - audit_logs: append-only records of routing activity
//
// Backends register themselves in init, so importing a backend package for
// its side effect is enough to make it available to NewStorage:
//
//	import _ "report-router/internal/storage/sqlite"
//
//	store, err := storage.NewStorage(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	rules, err := store.ListActiveRules(ctx)
package storage

import (
	"context"
	"time"

	"report-router/internal/routing"
)

// Storage is the persistence contract shared by all backends.
type Storage interface {
	// Connection management
	Close() error
	Health(ctx context.Context) error

	// Path rules
	ListActiveRules(ctx context.Context) ([]routing.PathRule, error)
	ListRules(ctx context.Context) ([]routing.PathRule, error)
	UpsertRules(ctx context.Context, rules []routing.PathRule) error

	// Audit
	InsertAuditEvent(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one row of audit_logs.
type AuditEvent struct {
	ID        string    `json:"id"`
	Principal string    `json:"principal"`
	Role      string    `json:"role"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Targets   []string  `json:"targets"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
	GetType() string
}

// GenericConfig is a simple map-based implementation of StorageConfig
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil // Basic configs don't need validation
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}

// String returns the value stored under key, or the empty string.
func (gc GenericConfig) String(key string) string {
	if v, ok := gc[key].(string); ok {
		return v
	}
	return ""
}
