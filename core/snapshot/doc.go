// Package snapshot persists inventory and report tables as CSV objects.
//
// Two backends are provided: FileStore writes into a local directory, BucketStore
// writes into an S3/MinIO bucket through core/storage. Both report a missing snapshot
// as ErrNotFound so callers can fail loudly instead of comparing against an empty
// dataset.
package snapshot
