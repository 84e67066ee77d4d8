package snapshot

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"repo-reconciler/core/storage/mocks"
	"repo-reconciler/core/tabular"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(Config{Backend: "file", Dir: t.TempDir()}, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = New(Config{Backend: "s3", Prefix: "p"}, new(mocks.Client), "bucket")
	require.NoError(t, err)
	assert.IsType(t, &BucketStore{}, s)

	_, err = New(Config{Backend: "s3"}, nil, "bucket")
	assert.Error(t, err)

	_, err = New(Config{Backend: "ftp"}, nil, "")
	assert.ErrorContains(t, err, "unknown snapshot backend")
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	records := []tabular.Record{{"name": "a,b", "archived": "true"}}
	require.NoError(t, WriteTable(ctx, store, "nested/report.csv", []string{"name", "archived"}, records))

	table, err := ReadTable(ctx, store, "nested/report.csv")
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "a,b", table.Records[0].Name())
}

func TestFileStore_Missing(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := ReadTable(context.Background(), store, "absent.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore("/does/not/matter")
	abs := filepath.Join(dir, "x.csv")

	require.NoError(t, store.Write(context.Background(), abs, []byte("name\n")))
	assert.Equal(t, abs, store.Location(abs))
}

func TestBucketStore_Read(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	store := NewBucketStore(client, "bucket", "snapshots")

	client.On("StatObject", mock.Anything, "bucket", "snapshots/gitlab.csv", mock.Anything).
		Return(minio.ObjectInfo{Key: "snapshots/gitlab.csv"}, nil)
	client.On("GetObject", mock.Anything, "bucket", "snapshots/gitlab.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader("name\nfoo\n")), nil)

	table, err := ReadTable(ctx, store, "gitlab.csv")
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "foo", table.Records[0].Name())
	client.AssertExpectations(t)
}

func TestBucketStore_ReadMissing(t *testing.T) {
	client := new(mocks.Client)
	store := NewBucketStore(client, "bucket", "")

	client.On("StatObject", mock.Anything, "bucket", "gitlab.csv", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := store.Read(context.Background(), "gitlab.csv")
	assert.ErrorIs(t, err, ErrNotFound)
	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBucketStore_ReadStatError(t *testing.T) {
	client := new(mocks.Client)
	store := NewBucketStore(client, "bucket", "")

	client.On("StatObject", mock.Anything, "bucket", "gitlab.csv", mock.Anything).
		Return(minio.ObjectInfo{}, errors.New("connection refused"))

	_, err := store.Read(context.Background(), "gitlab.csv")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestBucketStore_WriteCreatesBucket(t *testing.T) {
	client := new(mocks.Client)
	store := NewBucketStore(client, "bucket", "snapshots")

	client.On("BucketExists", mock.Anything, "bucket").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "bucket", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "bucket", "snapshots/out.csv", mock.Anything, int64(5), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	err := store.Write(context.Background(), "out.csv", []byte("name\n"))
	require.NoError(t, err)
	client.AssertExpectations(t)
	assert.Equal(t, "s3://bucket/snapshots/out.csv", store.Location("out.csv"))
}

func TestBucketStore_WriteUploadError(t *testing.T) {
	client := new(mocks.Client)
	store := NewBucketStore(client, "bucket", "")

	client.On("BucketExists", mock.Anything, "bucket").Return(true, nil)
	client.On("PutObject", mock.Anything, "bucket", "out.csv", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied"))

	err := store.Write(context.Background(), "out.csv", []byte("x"))
	assert.ErrorContains(t, err, "denied")
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}
