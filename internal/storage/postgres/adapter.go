package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"report-router/internal/routing"
	"report-router/internal/storage"
)

type Adapter struct {
	db     *sql.DB
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	db, err := sql.Open("pgx", config.GetConnectionString())
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
			id BIGSERIAL PRIMARY KEY,
			prefix TEXT NOT NULL,
			destination_folder TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 100,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_path_rules_active ON path_rules (active, priority, id)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			principal TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			targets JSONB NOT NULL DEFAULT '[]',
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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

func (a *Adapter) ListActiveRules(ctx context.Context) ([]routing.PathRule, error) {
	return a.queryRules(ctx, `SELECT id, prefix, destination_folder, priority, active, created_at
		FROM path_rules WHERE active ORDER BY priority ASC, id ASC`)
}

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
		if err := rows.Scan(&rule.ID, &rule.Prefix, &rule.DestinationFolder,
			&rule.Priority, &rule.Active, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan path rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate path rules: %w", err)
	}
	return rules, nil
}

// UpsertRules inserts or replaces rules by id in one transaction and moves
// the id sequence past any explicitly supplied ids.
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
				VALUES ($1, $2, $3, $4, $5)`,
				rule.Prefix, rule.DestinationFolder, rule.Priority, rule.Active, createdAt)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO path_rules (id, prefix, destination_folder, priority, active, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET
					prefix = EXCLUDED.prefix,
					destination_folder = EXCLUDED.destination_folder,
					priority = EXCLUDED.priority,
					active = EXCLUDED.active`,
				rule.ID, rule.Prefix, rule.DestinationFolder, rule.Priority, rule.Active, createdAt)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert path rule %q: %w", rule.Prefix, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('path_rules', 'id'),
		GREATEST((SELECT COALESCE(MAX(id), 0) FROM path_rules), 1))`); err != nil {
		return fmt.Errorf("failed to advance path rule sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit path rules: %w", err)
	}
	return nil
}

func (a *Adapter) InsertAuditEvent(ctx context.Context, event *storage.AuditEvent) error {
	targets := event.Targets
	if targets == nil {
		targets = []string{}
	}
	data, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("failed to marshal audit targets: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = a.db.ExecContext(ctx, `INSERT INTO audit_logs (id, principal, role, action, details, targets, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Principal, event.Role, event.Action, event.Details, string(data), event.Status, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
