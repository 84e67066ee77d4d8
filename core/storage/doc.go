// Package storage wraps the MinIO Go client for the S3 snapshot backend.
//
// The Client interface covers only what the snapshot store needs (bucket checks,
// uploads, downloads and stat calls) so it can be mocked in tests
// (see core/storage/mocks). It works against AWS S3 and self-hosted MinIO alike.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
