// ABOUTME: Tests for database schema creation and migrations
// ABOUTME: Uses in-memory SQLite for fast isolated tests
package db

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRaw(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestInitSchema(t *testing.T) {
	database := openRaw(t)
	require.NoError(t, InitSchema(database))

	ctx := context.Background()
	tables, err := Tables(ctx, database)
	require.NoError(t, err)
	for _, want := range []string{
		"schema_migrations", "clients", "leads", "outreach", "targets", "target_progress",
		"target_categories", "campaigns", "campaign_templates", "integrations", "integration_errors", "backup_runs",
	} {
		assert.Contains(t, tables, want)
	}

	for _, idx := range []string{"idx_outreach_client_id", "idx_outreach_lead_id", "idx_outreach_date"} {
		var name string
		err := database.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		assert.NoError(t, err, "index %s", idx)
	}

	version, err := SchemaVersion(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, LatestSchemaVersion(), version)
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openRaw(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, database))
	require.NoError(t, Migrate(ctx, database))

	var applied int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, len(migrations), applied)

	pending, err := PendingMigrations(ctx, database)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrateFromClientLeadStore(t *testing.T) {
	database := openRaw(t)
	ctx := context.Background()

	// Simulate a store created before outreach existed.
	require.NoError(t, ensureMigrationsTable(ctx, database))
	require.NoError(t, applyMigration(ctx, database, migrations[0]))
	_, err := database.Exec(`INSERT INTO clients (id, name, status, created_at, updated_at)
		VALUES ('8c1f1d52-7b7c-4d51-9d8f-2b0e7d6f1a11', 'Existing', 'active', 1, 1)`)
	require.NoError(t, err)

	pending, err := PendingMigrations(ctx, database)
	require.NoError(t, err)
	require.Len(t, pending, len(migrations)-1)
	assert.Equal(t, 2, pending[0].Version)
	assert.Equal(t, "outreach", pending[0].Description)

	require.NoError(t, Migrate(ctx, database))

	var name string
	require.NoError(t, database.QueryRow(`SELECT name FROM clients`).Scan(&name))
	assert.Equal(t, "Existing", name)

	exists, err := tableExists(ctx, database, "outreach")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMigrateRejectsNewerSchema(t *testing.T) {
	database := openRaw(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, database))

	_, err := database.Exec(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, 'future', 0)`,
		LatestSchemaVersion()+1)
	require.NoError(t, err)

	err = Migrate(ctx, database)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestOutreachCheckConstraints(t *testing.T) {
	database := setupTestDB(t)
	_, err := database.Exec(`INSERT INTO outreach (id, client_id, outreach_type, outreach_date, status, created_at, updated_at)
		VALUES ('a', 'b', 'fax', 0, 'pending', 0, 0)`)
	assert.Error(t, err)
}
