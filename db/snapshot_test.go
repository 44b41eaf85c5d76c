// ABOUTME: Tests for database snapshot, validation, and restore
// ABOUTME: Verifies snapshots carry data and restores keep the previous file
package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.db")

	src, err := OpenDatabase(srcPath)
	require.NoError(t, err)
	client := &models.Client{Name: "Snapshot Co"}
	require.NoError(t, NewClientRepository(src).Create(ctx, client))

	data, err := Snapshot(ctx, src)
	require.NoError(t, err)
	require.NoError(t, src.Close())
	require.NoError(t, ValidateSnapshot(ctx, data))

	dstPath := filepath.Join(dir, "dst.db")
	previous, err := RestoreSnapshot(dstPath, data)
	require.NoError(t, err)
	assert.Empty(t, previous)

	dst, err := OpenDatabase(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	got, err := NewClientRepository(dst).Get(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Snapshot Co", got.Name)
}

func TestRestoreSnapshotKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "crm.db")

	database, err := OpenDatabase(path)
	require.NoError(t, err)
	data, err := Snapshot(ctx, database)
	require.NoError(t, err)
	require.NoError(t, NewLeadRepository(database).Create(ctx, &models.Lead{Name: "after snapshot"}))
	require.NoError(t, database.Close())

	previous, err := RestoreSnapshot(path, data)
	require.NoError(t, err)
	require.NotEmpty(t, previous)
	_, err = os.Stat(previous)
	require.NoError(t, err)

	restored, err := OpenDatabase(path)
	require.NoError(t, err)
	defer restored.Close()
	leads, err := NewLeadRepository(restored).List(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestValidateSnapshotRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	err := ValidateSnapshot(ctx, []byte("definitely not sqlite"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a SQLite database")

	// A SQLite file without the migrations table is also rejected.
	raw := openRaw(t)
	_, err = raw.Exec(`CREATE TABLE foreign_app (id TEXT)`)
	require.NoError(t, err)
	data, err := Snapshot(ctx, raw)
	require.NoError(t, err)
	assert.Error(t, ValidateSnapshot(ctx, data))
}
