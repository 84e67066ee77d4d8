package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"repo-reconciler/core/storage"
	"repo-reconciler/core/tabular"

	"github.com/minio/minio-go/v7"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config selects and configures the snapshot backend.
type Config struct {
	// Backend is either "file" or "s3".
	Backend string `mapstructure:"backend" default:"file"`
	// Dir is the local directory used by the file backend.
	Dir string `mapstructure:"dir" default:"."`
	// Prefix is prepended to object names by the s3 backend.
	Prefix string `mapstructure:"prefix" default:"snapshots"`
}

// Store reads and writes named snapshots.
type Store interface {
	// Read returns the raw snapshot bytes, or ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the snapshot with data.
	Write(ctx context.Context, name string, data []byte) error
	// Location describes where name is stored, for log output.
	Location(name string) string
}

// New builds the store selected by cfg. client is only used by the s3 backend.
func New(cfg Config, client storage.Client, bucket string) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir), nil
	case BackendS3:
		if client == nil {
			return nil, fmt.Errorf("s3 snapshot backend requires a storage client")
		}
		return NewBucketStore(client, bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}

// ReadTable reads and decodes a snapshot.
func ReadTable(ctx context.Context, s Store, name string) (tabular.Table, error) {
	data, err := s.Read(ctx, name)
	if err != nil {
		return tabular.Table{}, err
	}
	return tabular.DecodeReader(bytes.NewReader(data))
}

// WriteTable encodes and writes a snapshot.
func WriteTable(ctx context.Context, s Store, name string, header []string, records []tabular.Record) error {
	var buf bytes.Buffer
	if err := tabular.EncodeWriter(&buf, header, records); err != nil {
		return err
	}
	return s.Write(ctx, name, buf.Bytes())
}

// FileStore keeps snapshots in a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// Read implements Store.
func (s *FileStore) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path(name))
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path(name), err)
	}
	return data, nil
}

// Write implements Store.
func (s *FileStore) Write(_ context.Context, name string, data []byte) error {
	p := s.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", p, err)
	}
	return nil
}

// Location implements Store.
func (s *FileStore) Location(name string) string {
	return s.path(name)
}

// BucketStore keeps snapshots in an S3/MinIO bucket.
type BucketStore struct {
	client storage.Client
	bucket string
	prefix string
}

// NewBucketStore creates a store writing under prefix in bucket.
func NewBucketStore(client storage.Client, bucket, prefix string) *BucketStore {
	return &BucketStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *BucketStore) object(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Read implements Store.
func (s *BucketStore) Read(ctx context.Context, name string) ([]byte, error) {
	obj := s.object(name)

	// GetObject is lazy, so stat first to turn a missing key into ErrNotFound.
	if _, err := s.client.StatObject(ctx, s.bucket, obj, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Location(name))
		}
		return nil, fmt.Errorf("failed to stat snapshot %s: %w", s.Location(name), err)
	}

	reader, err := s.client.GetObject(ctx, s.bucket, obj, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", s.Location(name), err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.Location(name), err)
	}
	return data, nil
}

// Write implements Store. The bucket is created on first use.
func (s *BucketStore) Write(ctx context.Context, name string, data []byte) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.object(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", s.Location(name), err)
	}
	return nil
}

// Location implements Store.
func (s *BucketStore) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.object(name)
}
