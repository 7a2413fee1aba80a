package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LocalObjectStorage stores objects on the local filesystem. Content types
// are kept in a sidecar file next to each object.
type LocalObjectStorage struct {
	rootDir string
	logger  *zap.Logger
}

// NewLocalObjectStorage creates a filesystem-backed object store rooted at dir
func NewLocalObjectStorage(dir string, logger *zap.Logger) (*LocalObjectStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalObjectStorage{rootDir: dir, logger: logger}, nil
}

// path maps a key to a filesystem path, rejecting traversal outside the root
func (s *LocalObjectStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.rootDir, cleaned), nil
}

// Upload stores data under the given key
func (s *LocalObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	if contentType != "" {
		if err := os.WriteFile(p+".meta", []byte(contentType), 0o644); err != nil {
			return fmt.Errorf("failed to write object metadata: %w", err)
		}
	}
	s.logger.Debug("Stored object", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Download returns the object data and its content type
func (s *LocalObjectStorage) Download(ctx context.Context, key string) ([]byte, string, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("failed to read object: %w", err)
	}
	contentType := "application/octet-stream"
	if meta, err := os.ReadFile(p + ".meta"); err == nil {
		contentType = string(meta)
	}
	return data, contentType, nil
}

// Delete removes an object; deleting a missing key is not an error
func (s *LocalObjectStorage) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	if err := os.Remove(p + ".meta"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object metadata: %w", err)
	}
	return nil
}

// Exists checks whether an object is stored under the key
func (s *LocalObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// DownloadURL returns an application-relative URL served by the file handler.
// Local files do not expire, so the returned expiry is purely informational.
func (s *LocalObjectStorage) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	return "/api/v1/files/" + key, time.Now().Add(expiresIn), nil
}

var _ ObjectStorage = (*LocalObjectStorage)(nil)
