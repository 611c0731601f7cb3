package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang/snappy"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/internal/checksum"
	"github.com/vvka-141/dwload/internal/extract"
	"github.com/vvka-141/dwload/internal/storage"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// TableLoader bulk-loads extracts into tables of one schema.
type TableLoader struct {
	fsys   storage.FS
	schema string
}

// NewTableLoader creates a TableLoader reading through fsys.
func NewTableLoader(fsys storage.FS, schema string) *TableLoader {
	if fsys == nil {
		panic("fsys cannot be nil - programming error")
	}
	return &TableLoader{fsys: fsys, schema: schema}
}

// CopySQL returns the COPY statement for table.
func CopySQL(schema string, table catalog.Table) string {
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		catalog.Qualified(schema, table.Name), table.QuotedColumns())
}

// Result describes one table load.
type Result struct {
	Rows int64

	// Bytes and Checksum cover the raw extract as read from storage.
	Bytes    int64
	Checksum string
}

// Load streams source into table inside tx.
// The extract is projected onto the table's column mapping and its rules
// applied while it streams; tx is never committed here.
func (l *TableLoader) Load(ctx context.Context, tx dwload.Tx, table catalog.Table, source string) (Result, error) {
	rc, compressed, err := l.open(ctx, source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%s: %s: %w", table.Name, source, dwload.ErrSourceNotFound)
		}
		return Result{}, fmt.Errorf("%s: failed to open %s: %w", table.Name, source, err)
	}
	defer rc.Close()

	digest := checksum.NewReader(rc)
	var in io.Reader = digest
	if compressed {
		in = snappy.NewReader(digest)
	}
	pr, pw := io.Pipe()
	projected := make(chan error, 1)
	go func() {
		_, err := extract.Project(in, pw, table.Columns, table.Rules)
		pw.CloseWithError(err)
		projected <- err
	}()

	rows, copyErr := tx.CopyFrom(ctx, pr, CopySQL(l.schema, table))
	// unblocks the projection if COPY stopped reading early
	pr.CloseWithError(io.ErrClosedPipe)
	projectErr := <-projected

	// A projection failure surfaces in COPY as a generic abort; report the cause.
	if projectErr != nil && !errors.Is(projectErr, io.ErrClosedPipe) {
		return Result{}, fmt.Errorf("%s: %s: %w", table.Name, source, projectErr)
	}
	if copyErr != nil {
		return Result{}, fmt.Errorf("%s: copy failed: %w", table.Name, copyErr)
	}
	return Result{Rows: rows, Bytes: digest.Size(), Checksum: digest.Sum()}, nil
}

// SnappySuffix marks an extract stored in the snappy framing format.
const SnappySuffix = ".sz"

// open prefers the plain extract and falls back to its snappy-framed sibling.
func (l *TableLoader) open(ctx context.Context, source string) (io.ReadCloser, bool, error) {
	rc, err := l.fsys.Open(ctx, source)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return rc, false, err
	}
	rc, zerr := l.fsys.Open(ctx, source+SnappySuffix)
	if errors.Is(zerr, fs.ErrNotExist) {
		return nil, false, err
	}
	if zerr != nil {
		return nil, false, zerr
	}
	return rc, true, nil
}
