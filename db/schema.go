// ABOUTME: Database schema definitions and versioned migrations
// ABOUTME: Applies additive migrations in order and records them in schema_migrations
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type migration struct {
	version     int
	description string
	statements  string
}

// Migrations are additive. Never edit an applied migration; append a new one.
var migrations = []migration{
	{
		version:     1,
		description: "clients and leads",
		statements: `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	whatsapp TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	instagram TEXT NOT NULL DEFAULT '',
	monthly_charge REAL NOT NULL DEFAULT 0,
	deliverables TEXT NOT NULL DEFAULT '[]',
	payment_date TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL CHECK (status IN ('active', 'inactive', 'paused')),
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name);
CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);

CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	designation TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL CHECK (source IN ('website', 'referral', 'social_media', 'email_campaign', 'other')),
	status TEXT NOT NULL CHECK (status IN ('new', 'contacted', 'qualified', 'proposal_sent', 'negotiating', 'won', 'lost')),
	notes TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
`,
	},
	{
		version:     2,
		description: "outreach",
		statements: `
CREATE TABLE IF NOT EXISTS outreach (
	id TEXT PRIMARY KEY NOT NULL,
	client_id TEXT NOT NULL,
	lead_id TEXT,
	outreach_type TEXT NOT NULL CHECK (outreach_type IN ('email', 'phone_call', 'linkedin_message', 'social_media_post', 'meeting', 'other')),
	outreach_date INTEGER NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'scheduled', 'cancelled')),
	notes TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY (client_id) REFERENCES clients(id),
	FOREIGN KEY (lead_id) REFERENCES leads(id)
);

CREATE INDEX IF NOT EXISTS idx_outreach_client_id ON outreach(client_id);
CREATE INDEX IF NOT EXISTS idx_outreach_lead_id ON outreach(lead_id);
CREATE INDEX IF NOT EXISTS idx_outreach_date ON outreach(outreach_date);
`,
	},
	{
		version:     3,
		description: "targets",
		statements: `
CREATE TABLE IF NOT EXISTS targets (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	target_type TEXT NOT NULL CHECK (target_type IN ('weekly', 'monthly', 'annual')),
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	target_value REAL NOT NULL,
	current_progress REAL NOT NULL DEFAULT 0,
	unit TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL CHECK (status IN ('pending', 'in_progress', 'completed', 'overdue')),
	category TEXT NOT NULL DEFAULT '',
	priority INTEGER NOT NULL DEFAULT 1,
	icon_name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_targets_status ON targets(status);
CREATE INDEX IF NOT EXISTS idx_targets_end_date ON targets(end_date);

CREATE TABLE IF NOT EXISTS target_progress (
	id TEXT PRIMARY KEY,
	target_id TEXT NOT NULL,
	date TEXT NOT NULL,
	progress REAL NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	FOREIGN KEY (target_id) REFERENCES targets(id)
);

CREATE INDEX IF NOT EXISTS idx_target_progress_target_id ON target_progress(target_id);

CREATE TABLE IF NOT EXISTS target_categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	icon_name TEXT NOT NULL DEFAULT ''
);
`,
	},
	{
		version:     4,
		description: "campaigns",
		statements: `
CREATE TABLE IF NOT EXISTS campaigns (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL CHECK (type IN ('email', 'message', 'phone', 'social', 'multi_channel')),
	status TEXT NOT NULL CHECK (status IN ('draft', 'active', 'paused', 'completed', 'archived', 'cancelled')),
	priority TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
	target_count INTEGER NOT NULL DEFAULT 0,
	sent_count INTEGER NOT NULL DEFAULT 0,
	response_count INTEGER NOT NULL DEFAULT 0,
	conversion_count INTEGER NOT NULL DEFAULT 0,
	start_date INTEGER NOT NULL,
	end_date INTEGER,
	budget REAL,
	segments TEXT NOT NULL DEFAULT '[]',
	schedule TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);
CREATE INDEX IF NOT EXISTS idx_campaigns_type ON campaigns(type);

CREATE TABLE IF NOT EXISTS campaign_templates (
	id TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	variables TEXT NOT NULL DEFAULT '{}',
	sort_order INTEGER NOT NULL DEFAULT 0,
	delay_days INTEGER,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY (campaign_id) REFERENCES campaigns(id)
);

CREATE INDEX IF NOT EXISTS idx_campaign_templates_campaign_id ON campaign_templates(campaign_id);
`,
	},
	{
		version:     5,
		description: "integrations",
		statements: `
CREATE TABLE IF NOT EXISTS integrations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	provider TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('connected', 'disconnected', 'error', 'pending')),
	is_connected INTEGER NOT NULL DEFAULT 0,
	last_sync INTEGER,
	config TEXT NOT NULL DEFAULT '{}',
	error TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_integrations_provider ON integrations(provider);

CREATE TABLE IF NOT EXISTS integration_errors (
	id TEXT PRIMARY KEY,
	integration_id TEXT NOT NULL,
	message TEXT NOT NULL,
	occurred_at INTEGER NOT NULL,
	FOREIGN KEY (integration_id) REFERENCES integrations(id)
);

CREATE INDEX IF NOT EXISTS idx_integration_errors_integration_id ON integration_errors(integration_id);
`,
	},
	{
		version:     6,
		description: "backup runs",
		statements: `
CREATE TABLE IF NOT EXISTS backup_runs (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	remote_id TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	size INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_backup_runs_provider_created ON backup_runs(provider, created_at);
`,
	},
}

// MigrationInfo describes a schema migration.
type MigrationInfo struct {
	Version     int
	Description string
}

// LatestSchemaVersion is the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// InitSchema brings db up to the latest schema version.
func InitSchema(db *sql.DB) error {
	return Migrate(context.Background(), db)
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, 0 for a fresh database.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return 0, err
	}
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// PendingMigrations lists the migrations Migrate would apply.
func PendingMigrations(ctx context.Context, db *sql.DB) ([]MigrationInfo, error) {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return nil, err
	}
	var pending []MigrationInfo
	for _, m := range migrations {
		if m.version > current {
			pending = append(pending, MigrationInfo{Version: m.version, Description: m.description})
		}
	}
	return pending, nil
}

// Migrate applies every pending migration, each in its own transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > LatestSchemaVersion() {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, LatestSchemaVersion())
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.version, m.description, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.statements); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.version, m.description, time.Now().UnixMilli(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Tables returns the names of all user tables.
func Tables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
