package storage

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"sort"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory entries
type memoryFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (f *memoryFileInfo) Name() string { return f.name }
func (f *memoryFileInfo) Size() int64  { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode {
	if f.isDir {
		return 0755 | fs.ModeDir
	}
	return 0644
}
func (f *memoryFileInfo) ModTime() time.Time { return time.Time{} }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() any           { return nil }

// MemoryFileSystem implements FS for in-memory testing.
// Directories exist implicitly once a file below them is added, or explicitly via AddDir.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true, ".": true},
	}
}

// AddFile adds a file, creating its parent directories.
func (m *MemoryFileSystem) AddFile(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = path.Clean(name)
	m.files[name] = []byte(content)
	m.addParents(name)
}

// AddDir adds an empty directory.
func (m *MemoryFileSystem) AddDir(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = path.Clean(name)
	m.dirs[name] = true
	m.addParents(name)
}

func (m *MemoryFileSystem) addParents(name string) {
	for dir := path.Dir(name); ; dir = path.Dir(dir) {
		m.dirs[dir] = true
		if dir == "/" || dir == "." {
			return
		}
	}
}

func (m *MemoryFileSystem) ReadDir(_ context.Context, dir string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir = path.Clean(dir)
	if !m.dirs[dir] {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}

	var result []FileInfo
	for name, content := range m.files {
		if path.Dir(name) == dir {
			result = append(result, &memoryFileInfo{name: path.Base(name), size: int64(len(content))})
		}
	}
	for name := range m.dirs {
		if name != dir && path.Dir(name) == dir {
			result = append(result, &memoryFileInfo{name: path.Base(name), isDir: true})
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (m *MemoryFileSystem) Stat(_ context.Context, name string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = path.Clean(name)
	if content, ok := m.files[name]; ok {
		return &memoryFileInfo{name: path.Base(name), size: int64(len(content))}, nil
	}
	if m.dirs[name] {
		return &memoryFileInfo{name: path.Base(name), isDir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFileSystem) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = path.Clean(name)
	content, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MemoryFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// Files returns the sorted paths of every file, for test assertions.
func (m *MemoryFileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
