package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage reads and writes image files on the local filesystem.
type Storage struct{}

// NewStorage creates a new Storage instance.
func NewStorage() *Storage {
	return &Storage{}
}

// Save writes src to path, creating the parent directory tree first.
// It returns the written path.
func (s *Storage) Save(ctx context.Context, path string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to save file %s: %w", path, err)
	}

	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close file %s: %w", path, err)
	}

	return path, nil
}

// Load opens the file at path and returns a reader.
func (s *Storage) Load(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	return f, nil
}
