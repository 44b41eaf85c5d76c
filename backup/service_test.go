// ABOUTME: Tests for the backup service
// ABOUTME: Uses an in-memory fake store and in-memory SQLite
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeStore stamps each upload one minute after the previous one.
type fakeStore struct {
	mu        sync.Mutex
	files     map[string]models.BackupFile
	data      map[string][]byte
	clock     time.Time
	seq       int
	uploadErr error
	uploads   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files: map[string]models.BackupFile{},
		data:  map[string][]byte{},
		clock: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) Upload(_ context.Context, name string, data []byte) (models.BackupFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return models.BackupFile{}, f.uploadErr
	}
	f.seq++
	f.clock = f.clock.Add(time.Minute)
	file := models.BackupFile{
		ID:          fmt.Sprintf("id-%02d", f.seq),
		Name:        name,
		ContentType: ContentType,
		Size:        int64(len(data)),
		CreatedAt:   f.clock,
		UpdatedAt:   f.clock,
		Status:      models.BackupCompleted,
	}
	f.files[file.ID] = file
	f.data[file.ID] = data
	return file, nil
}

func (f *fakeStore) Download(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) List(_ context.Context) ([]models.BackupFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.BackupFile, 0, len(f.files))
	for _, file := range f.files {
		out = append(out, file)
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id]; !ok {
		return ErrNotFound
	}
	delete(f.files, id)
	delete(f.data, id)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func setupService(t *testing.T, store Store, opts ...Option) (*Service, *sql.DB) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewService(store, database, opts...), database
}

func TestCreateBackupReportsFailureAsStatus(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("quota exceeded")
	fixed := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, store, WithClock(func() time.Time { return fixed }))

	file := svc.CreateBackup(context.Background(), []byte("payload"), "nightly.db")
	assert.Equal(t, models.BackupFailed, file.Status)
	assert.False(t, file.Succeeded())
	assert.Equal(t, "quota exceeded", file.Error)
	assert.Equal(t, "nightly.db", file.Name)
	assert.Equal(t, int64(7), file.Size)
	assert.Equal(t, fixed, file.CreatedAt)
	assert.Empty(t, file.ID)
}

func TestCreateBackupPrunesOldVersions(t *testing.T) {
	store := newFakeStore()
	svc, _ := setupService(t, store, WithMaxVersions(3))
	ctx := context.Background()

	for i := range 5 {
		file := svc.CreateBackup(ctx, []byte("x"), fmt.Sprintf("b%d.db", i))
		require.True(t, file.Succeeded())
	}

	files, err := svc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"id-05", "id-04", "id-03"}, []string{files[0].ID, files[1].ID, files[2].ID})
}

func TestBackupDatabaseRecordsRun(t *testing.T) {
	store := newFakeStore()
	svc, database := setupService(t, store)
	ctx := context.Background()

	require.NoError(t, db.NewClientRepository(database).Create(ctx, &models.Client{Name: "Acme"}))

	file, err := svc.BackupDatabase(ctx)
	require.NoError(t, err)
	require.True(t, file.Succeeded())
	assert.Regexp(t, regexp.MustCompile(`^commandcenter-[0-9A-HJKMNP-TV-Z]{26}\.db$`), file.Name)

	data, ok := svc.RestoreBackup(ctx, file.ID)
	require.True(t, ok)
	require.NoError(t, db.ValidateSnapshot(ctx, data))

	history, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "fake", history[0].Provider)
	assert.Equal(t, file.ID, history[0].RemoteID)
	assert.Equal(t, file.Name, history[0].Name)
	assert.Equal(t, models.BackupCompleted, history[0].Status)
}

func TestBackupDatabaseRecordsFailedRun(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("network down")
	svc, _ := setupService(t, store)
	ctx := context.Background()

	file, err := svc.BackupDatabase(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.BackupFailed, file.Status)

	history, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.BackupFailed, history[0].Status)
	assert.Equal(t, "network down", history[0].Error)
}

func TestBackupAsyncDeliversOnceAndCloses(t *testing.T) {
	store := newFakeStore()
	svc, _ := setupService(t, store)
	ignore := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, ignore)

	done := svc.BackupAsync(context.Background())
	select {
	case file, ok := <-done:
		require.True(t, ok)
		assert.True(t, file.Succeeded())
	case <-time.After(5 * time.Second):
		t.Fatal("backup did not finish")
	}

	_, ok := <-done
	assert.False(t, ok, "channel should be closed after one result")
}

func TestBackupAsyncCancelledContext(t *testing.T) {
	store := newFakeStore()
	svc, _ := setupService(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	file := <-svc.BackupAsync(ctx)
	assert.Equal(t, models.BackupFailed, file.Status)
	assert.Contains(t, file.Error, "context canceled")
	assert.Zero(t, store.uploads)
}

func TestRestoreBackupMissing(t *testing.T) {
	svc, _ := setupService(t, newFakeStore())
	data, ok := svc.RestoreBackup(context.Background(), "nope")
	assert.False(t, ok)
	assert.Nil(t, data)

	assert.False(t, svc.DeleteBackup(context.Background(), "nope"))
}

func TestRestoreDatabaseRoundTrip(t *testing.T) {
	store := newFakeStore()
	svc, database := setupService(t, store)
	ctx := context.Background()

	require.NoError(t, db.NewClientRepository(database).Create(ctx, &models.Client{Name: "Restored Co"}))
	file, err := svc.BackupDatabase(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "commandcenter.db")
	previous, err := svc.RestoreDatabase(ctx, file.ID, path)
	require.NoError(t, err)
	assert.Empty(t, previous)

	restored, err := db.OpenDatabase(path)
	require.NoError(t, err)
	defer restored.Close()

	client, err := db.NewClientRepository(restored).FindByName(ctx, "Restored Co")
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestRestoreDatabaseRejectsGarbage(t *testing.T) {
	store := newFakeStore()
	svc, _ := setupService(t, store)
	ctx := context.Background()

	file := svc.CreateBackup(ctx, []byte("definitely not sqlite"), "junk.db")
	require.True(t, file.Succeeded())

	_, err := svc.RestoreDatabase(ctx, file.ID, filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a usable database")

	_, err = svc.RestoreDatabase(ctx, "missing", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
}

func TestDue(t *testing.T) {
	store := newFakeStore()
	svc, database := setupService(t, store, WithFrequency(models.FrequencyDaily))
	ctx := context.Background()
	base := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	due, err := svc.Due(ctx, base)
	require.NoError(t, err)
	assert.True(t, due, "no backups yet")

	runs := db.NewBackupRunRepository(database)
	require.NoError(t, runs.Record(ctx, &models.BackupRun{
		ID: "r1", Provider: "fake", Name: "a.db", Status: models.BackupCompleted, CreatedAt: base,
	}))
	require.NoError(t, runs.Record(ctx, &models.BackupRun{
		ID: "r2", Provider: "fake", Name: "b.db", Status: models.BackupFailed, CreatedAt: base.Add(30 * time.Hour),
	}))

	due, err = svc.Due(ctx, base.Add(23*time.Hour))
	require.NoError(t, err)
	assert.False(t, due)

	due, err = svc.Due(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, due, "failed runs do not reset the schedule")
}

func TestScheduleStopsOnCancel(t *testing.T) {
	store := newFakeStore()
	svc, _ := setupService(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Schedule(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.uploads >= 1
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("schedule did not stop")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.uploads, "a daily schedule runs once")
}
