// Package storage holds attachment bytes. The S3 implementation targets any
// S3-compatible endpoint; the memory implementation backs tests and local
// runs without object storage configured.
package storage

import (
	"context"
	"io"
)

// ObjectStore persists and retrieves attachment payloads by key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
