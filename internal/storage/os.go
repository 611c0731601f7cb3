package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OSFileSystem implements FS for the local filesystem
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS filesystem provider
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (p *OSFileSystem) ReadDir(_ context.Context, dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	result := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info for %s: %w", entry.Name(), err)
		}
		result = append(result, info)
	}

	return result, nil
}

func (p *OSFileSystem) Stat(_ context.Context, name string) (FileInfo, error) {
	return os.Stat(name)
}

func (p *OSFileSystem) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (p *OSFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}
