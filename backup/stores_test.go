// ABOUTME: Tests for backup store providers
// ABOUTME: Badger and Charm run in memory; S3 and Drive use in-process fakes
package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/remotearmz/commandcenter/charm"
	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// exerciseStore runs the shared Store contract against any provider.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	first, err := store.Upload(ctx, "commandcenter-a.db", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, models.BackupCompleted, first.Status)
	assert.Equal(t, int64(5), first.Size)
	assert.NotEmpty(t, first.ID)

	time.Sleep(2 * time.Millisecond)
	second, err := store.Upload(ctx, "commandcenter-b.db", []byte("second"))
	require.NoError(t, err)

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, second.ID, files[0].ID)
	assert.Equal(t, "commandcenter-a.db", files[1].Name)

	data, err := store.Download(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)

	require.NoError(t, store.Delete(ctx, first.ID))
	_, err = store.Download(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	files, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestMemoryStore(t *testing.T) {
	store, err := OpenMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "local", store.Name())
	exerciseStore(t, store)

	err = store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenLocalStore(dir)
	require.NoError(t, err)

	file, err := store.Upload(context.Background(), "persisted.db", []byte("keep me"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenLocalStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Download(context.Background(), file.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep me"), data)
}

func TestCharmStore(t *testing.T) {
	store := NewCharmStore(charm.NewTestClient(t))
	assert.Equal(t, "charm", store.Name())
	exerciseStore(t, store)
}

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modified map[string]time.Time
	pageSize int
	putErr   error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, modified: map[string]time.Time{}, pageSize: 1}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	f.objects[key] = data
	f.modified[key] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		_, _ = fmt.Sscanf(*in.ContinuationToken, "%d", &start)
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(f.objects[k]))),
			LastModified: aws.Time(f.modified[k]),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprint(end))
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "crm-backups", "commandcenter/")
	assert.Equal(t, "s3", store.Name())
	exerciseStore(t, store)

	for k := range fake.objects {
		assert.True(t, strings.HasPrefix(k, "commandcenter/"))
	}
}

func TestS3StoreUploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = fmt.Errorf("access denied")
	store := NewS3Store(fake, "crm-backups", "")

	_, err := store.Upload(context.Background(), "x.db", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

// fakeDrive keeps files in a map and counts folder creation.
type fakeDrive struct {
	mu             sync.Mutex
	folders        map[string]string
	files          map[string]*drive.File
	content        map[string][]byte
	createdFolders int
	seq            int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{folders: map[string]string{}, files: map[string]*drive.File{}, content: map[string][]byte{}}
}

func (f *fakeDrive) FindFolder(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.folders[name], nil
}

func (f *fakeDrive) CreateFolder(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdFolders++
	id := "folder-" + name
	f.folders[name] = id
	return id, nil
}

func (f *fakeDrive) Upload(_ context.Context, folderID, name string, data []byte) (*drive.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ts := time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC).Format(time.RFC3339)
	file := &drive.File{
		Id:           fmt.Sprintf("file-%d", f.seq),
		Name:         name,
		MimeType:     ContentType,
		Parents:      []string{folderID},
		Size:         int64(len(data)),
		CreatedTime:  ts,
		ModifiedTime: ts,
	}
	f.files[file.Id] = file
	f.content[file.Id] = data
	return file, nil
}

func (f *fakeDrive) Download(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.content[id]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "File not found"}
	}
	return data, nil
}

func (f *fakeDrive) List(_ context.Context, folderID string) ([]*drive.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*drive.File
	for _, file := range f.files {
		if len(file.Parents) > 0 && file.Parents[0] == folderID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeDrive) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id]; !ok {
		return &googleapi.Error{Code: http.StatusNotFound}
	}
	delete(f.files, id)
	delete(f.content, id)
	return nil
}

func TestDriveStore(t *testing.T) {
	fake := newFakeDrive()
	store := NewDriveStore(fake, "CommandCenter Backups")
	assert.Equal(t, "drive", store.Name())
	exerciseStore(t, store)

	assert.Equal(t, 1, fake.createdFolders)

	err := store.Delete(context.Background(), "file-999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDriveStoreReusesExistingFolder(t *testing.T) {
	fake := newFakeDrive()
	fake.folders["Existing"] = "folder-existing"
	store := NewDriveStore(fake, "Existing")

	file, err := store.Upload(context.Background(), "a.db", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, 0, fake.createdFolders)
	assert.Equal(t, "folder-existing", fake.files[file.ID].Parents[0])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC), file.CreatedAt)
}
