// Package storage persists uploaded document bytes. Workflow components only
// ever see the metadata record; the blob store owns the bytes.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"intake/pkg/platform/sentinel"
)

// BlobStore writes document bytes under a generated name, serves them back by
// stored path, and removes them when their metadata is deleted. Get returns
// sentinel.ErrNotFound for an unknown path.
type BlobStore interface {
	Put(ctx context.Context, filename string, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

// FSStore keeps blobs on the local filesystem under a base directory.
type FSStore struct {
	baseDir string
}

func NewFS(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (s *FSStore) Put(_ context.Context, filename string, data []byte) (string, error) {
	path := filepath.Join(s.baseDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document blob: %w", err)
	}
	return path, nil
}

func (s *FSStore) Get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read document blob: %w", err)
	}
	return data, nil
}

func (s *FSStore) Remove(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document blob: %w", err)
	}
	return nil
}
