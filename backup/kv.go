// ABOUTME: Backup store over a key-value database
// ABOUTME: Shared by the on-disk Badger store and the Charm KV store
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/oklog/ulid/v2"
	"github.com/remotearmz/commandcenter/charm"
	"github.com/remotearmz/commandcenter/models"
)

const (
	metaPrefix = "backups/meta/"
	dataPrefix = "backups/data/"
)

type keyValue interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	KeysWithPrefix(prefix []byte) ([][]byte, error)
}

// kvStore keeps each backup as a data key plus a JSON metadata key.
type kvStore struct {
	name  string
	kv    keyValue
	close func() error
	now   func() time.Time
}

func (s *kvStore) Name() string { return s.name }

func (s *kvStore) Upload(ctx context.Context, name string, data []byte) (models.BackupFile, error) {
	if err := ctx.Err(); err != nil {
		return models.BackupFile{}, err
	}
	ts := s.now().UTC()
	file := models.BackupFile{
		ID:          ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String(),
		Name:        name,
		ContentType: ContentType,
		Size:        int64(len(data)),
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Status:      models.BackupCompleted,
	}
	meta, err := json.Marshal(file)
	if err != nil {
		return models.BackupFile{}, fmt.Errorf("failed to encode backup metadata: %w", err)
	}
	if err := s.kv.Set([]byte(dataPrefix+file.ID), data); err != nil {
		return models.BackupFile{}, fmt.Errorf("failed to store backup data: %w", err)
	}
	if err := s.kv.Set([]byte(metaPrefix+file.ID), meta); err != nil {
		return models.BackupFile{}, fmt.Errorf("failed to store backup metadata: %w", err)
	}
	return file, nil
}

func (s *kvStore) Download(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.kv.Get([]byte(dataPrefix + id))
	if isMissingKey(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", id, err)
	}
	return data, nil
}

func (s *kvStore) List(ctx context.Context) ([]models.BackupFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := s.kv.KeysWithPrefix([]byte(metaPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	files := make([]models.BackupFile, 0, len(keys))
	for _, key := range keys {
		raw, err := s.kv.Get(key)
		if isMissingKey(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read backup metadata: %w", err)
		}
		var file models.BackupFile
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("corrupt metadata for %s: %w", strings.TrimPrefix(string(key), metaPrefix), err)
		}
		files = append(files, file)
	}
	sortNewestFirst(files)
	return files, nil
}

func (s *kvStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.kv.Get([]byte(metaPrefix + id)); isMissingKey(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	} else if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", id, err)
	}
	if err := s.kv.Delete([]byte(metaPrefix + id)); err != nil {
		return fmt.Errorf("failed to delete backup metadata: %w", err)
	}
	if err := s.kv.Delete([]byte(dataPrefix + id)); err != nil {
		return fmt.Errorf("failed to delete backup data: %w", err)
	}
	return nil
}

func (s *kvStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func isMissingKey(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, charm.ErrNotFound)
}

// NewCharmStore keeps backups in Charm KV, synced to the charm server.
func NewCharmStore(client *charm.Client) Store {
	return &kvStore{name: "charm", kv: client, now: time.Now}
}
