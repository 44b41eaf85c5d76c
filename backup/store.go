// ABOUTME: Backup storage abstraction and provider construction
// ABOUTME: Every provider stores opaque database snapshots by name and id
package backup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/remotearmz/commandcenter/charm"
	"github.com/remotearmz/commandcenter/config"
	"github.com/remotearmz/commandcenter/models"
)

// ContentType is the MIME type every backup object is stored with.
const ContentType = "application/octet-stream"

// ErrNotFound is returned by Download and Delete for unknown ids.
var ErrNotFound = errors.New("backup not found")

// Store is a remote or local place to keep database snapshots.
type Store interface {
	// Name identifies the provider in backup history.
	Name() string
	Upload(ctx context.Context, name string, data []byte) (models.BackupFile, error)
	Download(ctx context.Context, id string) ([]byte, error)
	// List returns stored backups, newest first.
	List(ctx context.Context) ([]models.BackupFile, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewStore builds the provider selected in cfg.
func NewStore(ctx context.Context, cfg config.BackupConfig) (Store, error) {
	switch cfg.Provider {
	case config.ProviderLocal:
		return OpenLocalStore(cfg.LocalPath)
	case config.ProviderS3:
		client, err := NewS3Client(ctx, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
	case config.ProviderDrive:
		oauthCfg, err := NewOAuthConfig()
		if err != nil {
			return nil, err
		}
		token, err := LoadToken()
		if err != nil {
			return nil, fmt.Errorf("no Drive token found, run 'commandcenter backup auth' first: %w", err)
		}
		api, err := NewDriveAPI(ctx, oauthCfg, token)
		if err != nil {
			return nil, err
		}
		return NewDriveStore(api, cfg.DriveFolder), nil
	case config.ProviderCharm:
		client, err := charm.Open(charm.WithHost(cfg.CharmHost))
		if err != nil {
			return nil, err
		}
		return NewCharmStore(client), nil
	}
	return nil, fmt.Errorf("unknown backup provider %q (want one of %s)", cfg.Provider, strings.Join(config.Providers, ", "))
}

// sortNewestFirst orders backups by creation time, newest first, with name
// as a tiebreaker so ULID-stamped names stay in order.
func sortNewestFirst(files []models.BackupFile) {
	slices.SortStableFunc(files, func(a, b models.BackupFile) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
}
