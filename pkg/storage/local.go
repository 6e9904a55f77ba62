package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage stores wasm artifacts under <base_dir>/<name>_<rand32>.wasm.
type LocalStorage struct {
	baseDir string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage returns a LocalStorage rooted at baseDir, creating it if
// necessary.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Store writes data to <base_dir>/<name>_<rand32>.wasm and returns that
// path as the URI.
func (s *LocalStorage) Store(_ context.Context, name string, data []byte) (string, error) {
	suffix, err := randSuffix()
	if err != nil {
		return "", fmt.Errorf("storage: generate suffix: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.wasm", name, suffix)
	path := filepath.Join(s.baseDir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", path, err)
	}
	return path, nil
}

// Fetch reads back the bytes at uri (a path previously returned by Store).
func (s *LocalStorage) Fetch(_ context.Context, uri string) ([]byte, error) {
	data, err := os.ReadFile(uri)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read %s: %w", uri, err)
	}
	return data, nil
}

// randSuffix returns a 32-character hex string, matching the rand32
// naming convention in the blob layout.
func randSuffix() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
