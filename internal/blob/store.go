// Package blob stores image binary content addressed by an opaque key.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is the contract the catalog uses for image content. Keys are opaque;
// callers never interpret them beyond passing them back.
type Store interface {
	Save(ctx context.Context, r io.Reader, filename string) (key string, err error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// FSStore keeps blobs as files under a single directory and serves them
// from a configured public base URL.
type FSStore struct {
	dir     string
	baseURL string
}

// NewFSStore creates the backing directory if needed.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FSStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the payload under a fresh key. The original filename only
// contributes its extension.
func (s *FSStore) Save(ctx context.Context, r io.Reader, filename string) (string, error) {
	key := uuid.New().String() + filepath.Ext(filepath.Base(filename))

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write blob content: %w", err)
	}

	return key, nil
}

// Delete removes a blob. A missing blob is not an error.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored blob.
func (s *FSStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + key
}
