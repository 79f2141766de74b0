package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sinistra/pkg/platform/sentinel"
)

// Filesystem stores blobs under a root directory. Keys map to relative paths.
type Filesystem struct {
	root string
}

func NewFilesystem(root string) (*Filesystem, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *Filesystem) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write blob %s: %w", key, err)
	}
	return key, nil
}

func (s *Filesystem) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *Filesystem) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
