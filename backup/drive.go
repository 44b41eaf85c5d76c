// ABOUTME: Google Drive backup store using the Drive v3 API
// ABOUTME: Backups live in a dedicated folder created on first use
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/remotearmz/commandcenter/models"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	fileFields     = "id, name, mimeType, size, createdTime, modifiedTime"
)

// DriveAPI is the slice of Drive used for backups.
type DriveAPI interface {
	FindFolder(ctx context.Context, name string) (string, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	Upload(ctx context.Context, folderID, name string, data []byte) (*drive.File, error)
	Download(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context, folderID string) ([]*drive.File, error)
	Delete(ctx context.Context, id string) error
}

type driveService struct {
	srv *drive.Service
}

// NewDriveAPI authenticates to Drive with a stored OAuth token.
func NewDriveAPI(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (DriveAPI, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	srv, err := drive.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &driveService{srv: srv}, nil
}

func (d *driveService) FindFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), folderMimeType)
	list, err := d.srv.Files.List().Q(q).Fields("files(id)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (d *driveService) CreateFolder(ctx context.Context, name string) (string, error) {
	f, err := d.srv.Files.Create(&drive.File{Name: name, MimeType: folderMimeType}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (d *driveService) Upload(ctx context.Context, folderID, name string, data []byte) (*drive.File, error) {
	meta := &drive.File{Name: name, MimeType: ContentType, Parents: []string{folderID}}
	return d.srv.Files.Create(meta).Media(bytes.NewReader(data)).Fields(fileFields).Context(ctx).Do()
}

func (d *driveService) Download(ctx context.Context, id string) ([]byte, error) {
	resp, err := d.srv.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

func (d *driveService) List(ctx context.Context, folderID string) ([]*drive.File, error) {
	var files []*drive.File
	q := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	err := d.srv.Files.List().Q(q).Fields("nextPageToken, files("+fileFields+")").OrderBy("createdTime desc").
		Pages(ctx, func(page *drive.FileList) error {
			files = append(files, page.Files...)
			return nil
		})
	return files, err
}

func (d *driveService) Delete(ctx context.Context, id string) error {
	return d.srv.Files.Delete(id).Context(ctx).Do()
}

type DriveStore struct {
	api        DriveAPI
	folderName string

	mu       sync.Mutex
	folderID string
}

func NewDriveStore(api DriveAPI, folderName string) *DriveStore {
	return &DriveStore{api: api, folderName: folderName}
}

func (s *DriveStore) Name() string { return "drive" }

// folder returns the backup folder id, creating the folder if needed.
func (s *DriveStore) folder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folderID != "" {
		return s.folderID, nil
	}
	id, err := s.api.FindFolder(ctx, s.folderName)
	if err != nil {
		return "", fmt.Errorf("failed to look up backup folder: %w", err)
	}
	if id == "" {
		if id, err = s.api.CreateFolder(ctx, s.folderName); err != nil {
			return "", fmt.Errorf("failed to create backup folder: %w", err)
		}
	}
	s.folderID = id
	return id, nil
}

func (s *DriveStore) Upload(ctx context.Context, name string, data []byte) (models.BackupFile, error) {
	folderID, err := s.folder(ctx)
	if err != nil {
		return models.BackupFile{}, err
	}
	f, err := s.api.Upload(ctx, folderID, name, data)
	if err != nil {
		return models.BackupFile{}, fmt.Errorf("failed to upload %s to Drive: %w", name, err)
	}
	return fromDriveFile(f), nil
}

func (s *DriveStore) Download(ctx context.Context, id string) ([]byte, error) {
	data, err := s.api.Download(ctx, id)
	if isDriveNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from Drive: %w", id, err)
	}
	return data, nil
}

func (s *DriveStore) List(ctx context.Context) ([]models.BackupFile, error) {
	folderID, err := s.folder(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.api.List(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list Drive backups: %w", err)
	}
	out := make([]models.BackupFile, 0, len(files))
	for _, f := range files {
		out = append(out, fromDriveFile(f))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *DriveStore) Delete(ctx context.Context, id string) error {
	err := s.api.Delete(ctx, id)
	if isDriveNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s from Drive: %w", id, err)
	}
	return nil
}

func (s *DriveStore) Close() error { return nil }

func fromDriveFile(f *drive.File) models.BackupFile {
	created, _ := time.Parse(time.RFC3339, f.CreatedTime)
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	contentType := f.MimeType
	if contentType == "" {
		contentType = ContentType
	}
	return models.BackupFile{
		ID:          f.Id,
		Name:        f.Name,
		ContentType: contentType,
		Size:        f.Size,
		CreatedAt:   created,
		UpdatedAt:   modified,
		Status:      models.BackupCompleted,
	}
}

func isDriveNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
