// Package storage provides object storage for prescription scans,
// invoice PDFs, and backup archives.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned when the requested key does not exist
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage abstracts the file store behind upload and download operations
type ObjectStorage interface {
	// Upload stores data under the given key
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// Download returns the object data and its content type
	Download(ctx context.Context, key string) ([]byte, string, error)

	// Delete removes an object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object is stored under the key
	Exists(ctx context.Context, key string) (bool, error)

	// DownloadURL returns a URL from which the object can be fetched,
	// valid until the returned expiry time
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}
