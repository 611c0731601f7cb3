package storage

import (
	"context"
	"io"
	"io/fs"
	"strings"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FS is a read-only view of an extract tree.
type FS interface {
	// ReadDir lists the immediate children of dir.
	ReadDir(ctx context.Context, dir string) ([]FileInfo, error)

	// Stat returns metadata for a file or directory.
	Stat(ctx context.Context, name string) (FileInfo, error)

	// Open returns a reader over a file's content. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Join joins path elements using the separator this FS expects.
	Join(elem ...string) string
}

// Config selects and configures the backend for a data root.
type Config struct {
	S3 S3Config
}

// Open returns the FS that serves dataRoot and the root path inside it.
// dataRoot is either a local directory or an s3://bucket/prefix URL.
func Open(ctx context.Context, dataRoot string, cfg Config) (FS, string, error) {
	if bucket, prefix, ok := ParseS3URL(dataRoot); ok {
		fsys, err := NewS3FileSystem(ctx, bucket, cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return fsys, prefix, nil
	}
	return NewOSFileSystem(), dataRoot, nil
}

// ParseS3URL splits s3://bucket/prefix into bucket and prefix.
func ParseS3URL(raw string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.Trim(prefix, "/"), true
}
