// ABOUTME: Backup service coordinating snapshots, uploads, pruning, and restores
// ABOUTME: Transport failures are reported on the returned BackupFile, not as errors
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
	"go.uber.org/zap"
)

// DefaultMaxVersions is how many backups are kept before the oldest are pruned.
const DefaultMaxVersions = 5

type Service struct {
	store       Store
	db          *sql.DB
	runs        *db.BackupRunRepository
	logger      *zap.Logger
	maxVersions int
	frequency   models.BackupFrequency
	now         func() time.Time
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMaxVersions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxVersions = n
		}
	}
}

func WithFrequency(f models.BackupFrequency) Option {
	return func(s *Service) {
		if f.Valid() {
			s.frequency = f
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, database *sql.DB, opts ...Option) *Service {
	s := &Service{
		store:       store,
		db:          database,
		runs:        db.NewBackupRunRepository(database),
		logger:      zap.NewNop(),
		maxVersions: DefaultMaxVersions,
		frequency:   models.FrequencyDaily,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Provider() string { return s.store.Name() }

// Close releases the underlying store.
func (s *Service) Close() error { return s.store.Close() }

// CreateBackup uploads data under name. It never fails outright: a transport
// error comes back as a BackupFile with Status failed and Error set. After a
// successful upload the oldest backups beyond the version limit are deleted.
func (s *Service) CreateBackup(ctx context.Context, data []byte, name string) models.BackupFile {
	file, err := s.store.Upload(ctx, name, data)
	if err != nil {
		s.logger.Warn("backup upload failed",
			zap.String("provider", s.store.Name()), zap.String("name", name), zap.Error(err))
		return s.failedFile(name, int64(len(data)), err)
	}
	s.logger.Info("backup uploaded",
		zap.String("provider", s.store.Name()), zap.String("id", file.ID), zap.Int64("size", file.Size))

	if err := s.prune(ctx); err != nil {
		s.logger.Warn("backup prune failed", zap.String("provider", s.store.Name()), zap.Error(err))
	}
	return file
}

func (s *Service) failedFile(name string, size int64, err error) models.BackupFile {
	ts := s.now()
	return models.BackupFile{
		Name:        name,
		ContentType: ContentType,
		Size:        size,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Status:      models.BackupFailed,
		Error:       err.Error(),
	}
}

func (s *Service) prune(ctx context.Context) error {
	files, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	if len(files) <= s.maxVersions {
		return nil
	}
	for _, f := range files[s.maxVersions:] {
		if err := s.store.Delete(ctx, f.ID); err != nil {
			return fmt.Errorf("failed to prune %s: %w", f.Name, err)
		}
		s.logger.Debug("pruned old backup", zap.String("id", f.ID), zap.String("name", f.Name))
	}
	return nil
}

// BackupDatabase snapshots the database, uploads it as
// commandcenter-<ULID>.db, and records the attempt in backup history.
// Errors are returned only for snapshot or history failures.
func (s *Service) BackupDatabase(ctx context.Context) (models.BackupFile, error) {
	data, err := db.Snapshot(ctx, s.db)
	if err != nil {
		return models.BackupFile{}, fmt.Errorf("failed to snapshot database: %w", err)
	}

	id := ulid.MustNew(ulid.Timestamp(s.now()), ulid.DefaultEntropy()).String()
	name := fmt.Sprintf("commandcenter-%s.db", id)
	file := s.CreateBackup(ctx, data, name)

	run := &models.BackupRun{
		ID:        id,
		Provider:  s.store.Name(),
		RemoteID:  file.ID,
		Name:      name,
		Size:      int64(len(data)),
		Status:    file.Status,
		Error:     file.Error,
		CreatedAt: s.now(),
	}
	// recorded even when ctx was cancelled mid-upload
	if err := s.runs.Record(context.WithoutCancel(ctx), run); err != nil {
		return file, err
	}
	return file, nil
}

// BackupAsync runs BackupDatabase in the background. The channel receives
// exactly one BackupFile and is then closed; failures arrive as Status failed.
func (s *Service) BackupAsync(ctx context.Context) <-chan models.BackupFile {
	done := make(chan models.BackupFile, 1)
	go func() {
		defer close(done)
		if err := ctx.Err(); err != nil {
			done <- s.failedFile("", 0, err)
			return
		}
		file, err := s.BackupDatabase(ctx)
		if err != nil {
			file.Status = models.BackupFailed
			file.Error = err.Error()
		}
		done <- file
	}()
	return done
}

// RestoreBackup downloads a backup. The bool is false if it could not be read.
func (s *Service) RestoreBackup(ctx context.Context, id string) ([]byte, bool) {
	data, err := s.store.Download(ctx, id)
	if err != nil {
		s.logger.Warn("backup download failed",
			zap.String("provider", s.store.Name()), zap.String("id", id), zap.Error(err))
		return nil, false
	}
	return data, true
}

// RestoreDatabase replaces the database file at path with backup id. The
// database must not be open. It returns where the previous file was kept.
func (s *Service) RestoreDatabase(ctx context.Context, id, path string) (string, error) {
	data, ok := s.RestoreBackup(ctx, id)
	if !ok {
		return "", fmt.Errorf("backup %s could not be downloaded", id)
	}
	if err := db.ValidateSnapshot(ctx, data); err != nil {
		return "", fmt.Errorf("backup %s is not a usable database: %w", id, err)
	}
	previous, err := db.RestoreSnapshot(path, data)
	if err != nil {
		return "", err
	}
	s.logger.Info("database restored", zap.String("id", id), zap.String("path", path), zap.String("previous", previous))
	return previous, nil
}

// DeleteBackup reports whether the backup was deleted.
func (s *Service) DeleteBackup(ctx context.Context, id string) bool {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("backup delete failed",
			zap.String("provider", s.store.Name()), zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) ListBackups(ctx context.Context) ([]models.BackupFile, error) {
	files, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return files, nil
}

// History returns recorded backup attempts, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.BackupRun, error) {
	return s.runs.List(ctx, limit)
}

// Due reports whether a backup should run at now given the configured
// frequency and the last successful backup to this provider.
func (s *Service) Due(ctx context.Context, now time.Time) (bool, error) {
	last, err := s.runs.LastSuccessful(ctx, s.store.Name())
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return !now.Before(s.frequency.Next(last.CreatedAt)), nil
}

// Schedule checks every interval whether a backup is due and runs it. It
// returns when ctx is cancelled.
func (s *Service) Schedule(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		due, err := s.Due(ctx, s.now())
		if err != nil {
			s.logger.Warn("backup schedule check failed", zap.Error(err))
		} else if due {
			file, err := s.BackupDatabase(ctx)
			switch {
			case err != nil:
				s.logger.Error("scheduled backup failed", zap.Error(err))
			case !file.Succeeded():
				s.logger.Error("scheduled backup failed", zap.String("error", file.Error))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
