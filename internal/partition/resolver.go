// Package partition locates the directory holding one day's fact extracts.
package partition

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/vvka-141/dwload/internal/storage"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// Partition is a resolved partition directory.
type Partition struct {
	ID   string
	Path string
}

// Resolver finds partitions under a single partition root.
type Resolver struct {
	fsys storage.FS
	root string
}

// NewResolver creates a resolver over root, typically <data_root>/<partition_dir>.
func NewResolver(fsys storage.FS, root string) *Resolver {
	if fsys == nil {
		panic("fsys cannot be nil - programming error")
	}
	return &Resolver{fsys: fsys, root: root}
}

// Resolve returns the partition named id, or the latest available one when id is empty.
// Latest means the lexicographically greatest all-digit directory name, which for
// fixed-width YYYYMMDD names is also the most recent date.
func (r *Resolver) Resolve(ctx context.Context, id string) (Partition, error) {
	if id != "" {
		return r.resolveExplicit(ctx, id)
	}
	return r.resolveLatest(ctx)
}

func (r *Resolver) resolveExplicit(ctx context.Context, id string) (Partition, error) {
	p := r.fsys.Join(r.root, id)
	info, err := r.fsys.Stat(ctx, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Partition{}, fmt.Errorf("partition %s under %s: %w", id, r.root, dwload.ErrPartitionNotFound)
		}
		return Partition{}, fmt.Errorf("failed to stat partition %s: %w", id, err)
	}
	if !info.IsDir() {
		return Partition{}, fmt.Errorf("partition %s is not a directory: %w", p, dwload.ErrPartitionNotFound)
	}
	return Partition{ID: id, Path: p}, nil
}

func (r *Resolver) resolveLatest(ctx context.Context) (Partition, error) {
	entries, err := r.fsys.ReadDir(ctx, r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Partition{}, fmt.Errorf("partition root %s does not exist: %w", r.root, dwload.ErrNoPartitionsAvailable)
		}
		return Partition{}, fmt.Errorf("failed to list partitions in %s: %w", r.root, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && isNumeric(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	if len(ids) == 0 {
		return Partition{}, fmt.Errorf("no numeric partition directories in %s: %w", r.root, dwload.ErrNoPartitionsAvailable)
	}

	sort.Strings(ids)
	latest := ids[len(ids)-1]
	return Partition{ID: latest, Path: r.fsys.Join(r.root, latest)}, nil
}

// List returns every numeric partition id in ascending order.
func (r *Resolver) List(ctx context.Context) ([]string, error) {
	entries, err := r.fsys.ReadDir(ctx, r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list partitions in %s: %w", r.root, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && isNumeric(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isNumeric(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
