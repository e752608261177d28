package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"report-router/internal/routing"
	"report-router/internal/storage"
)

type Adapter struct {
	db     *sql.DB
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		db:     db,
		config: config,
	}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS path_rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			prefix TEXT NOT NULL,
			destination_folder TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 100,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_path_rules_active ON path_rules (active, priority, id)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			principal TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			targets TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// ListActiveRules returns active rules ordered by priority then id.
func (a *Adapter) ListActiveRules(ctx context.Context) ([]routing.PathRule, error) {
	return a.queryRules(ctx, `SELECT id, prefix, destination_folder, priority, active, created_at
		FROM path_rules WHERE active = 1 ORDER BY priority ASC, id ASC`)
}

// ListRules returns every rule, active or not.
func (a *Adapter) ListRules(ctx context.Context) ([]routing.PathRule, error) {
	return a.queryRules(ctx, `SELECT id, prefix, destination_folder, priority, active, created_at
		FROM path_rules ORDER BY priority ASC, id ASC`)
}

func (a *Adapter) queryRules(ctx context.Context, query string) ([]routing.PathRule, error) {
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get path rules: %w", err)
	}
	defer rows.Close()

	rules := []routing.PathRule{}
	for rows.Next() {
		var rule routing.PathRule
		var createdAt sql.NullTime
		if err := rows.Scan(&rule.ID, &rule.Prefix, &rule.DestinationFolder,
			&rule.Priority, &rule.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan path rule: %w", err)
		}
		rule.CreatedAt = createdAt.Time
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate path rules: %w", err)
	}
	return rules, nil
}

// UpsertRules inserts or replaces rules by id in one transaction. Rules with
// a zero id get one assigned.
func (a *Adapter) UpsertRules(ctx context.Context, rules []routing.PathRule) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rule := range rules {
		createdAt := rule.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		if rule.ID == 0 {
			_, err = tx.ExecContext(ctx, `INSERT INTO path_rules (prefix, destination_folder, priority, active, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				rule.Prefix, rule.DestinationFolder, rule.Priority, rule.Active, createdAt)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO path_rules (id, prefix, destination_folder, priority, active, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					prefix = excluded.prefix,
					destination_folder = excluded.destination_folder,
					priority = excluded.priority,
					active = excluded.active`,
				rule.ID, rule.Prefix, rule.DestinationFolder, rule.Priority, rule.Active, createdAt)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert path rule %q: %w", rule.Prefix, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit path rules: %w", err)
	}
	return nil
}

func (a *Adapter) InsertAuditEvent(ctx context.Context, event *storage.AuditEvent) error {
	targets, err := json.Marshal(event.Targets)
	if err != nil {
		return fmt.Errorf("failed to marshal audit targets: %w", err)
	}
	if event.Targets == nil {
		targets = []byte("[]")
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = a.db.ExecContext(ctx, `INSERT INTO audit_logs (id, principal, role, action, details, targets, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Principal, event.Role, event.Action, event.Details, string(targets), event.Status, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
