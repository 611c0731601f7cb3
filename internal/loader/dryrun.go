package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// DryRunStore is a Store that never connects. Its transactions read every
// COPY stream to the end and count data rows, so extracts are fully opened
// and normalized while the database stays untouched.
type DryRunStore struct {
	mu         sync.Mutex
	statements []string
}

// NewDryRunStore creates a DryRunStore.
func NewDryRunStore() *DryRunStore {
	return &DryRunStore{}
}

func (s *DryRunStore) Begin(context.Context) (dwload.Tx, error) {
	return &dryRunTx{store: s}, nil
}

func (s *DryRunStore) Close() {}

// Statements returns every statement the store's transactions received.
func (s *DryRunStore) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statements...)
}

func (s *DryRunStore) record(sql string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = append(s.statements, sql)
}

type dryRunTx struct {
	store *DryRunStore
	done  bool
}

func (t *dryRunTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.store.record(sql)
	return pgconn.NewCommandTag("DRY RUN"), nil
}

func (t *dryRunTx) CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error) {
	t.store.record(sql)

	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	var rows int64
	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("reading copy stream: %w", err)
		}
		rows++
	}
	// first record is the header
	if rows > 0 {
		rows--
	}
	return rows, nil
}

func (t *dryRunTx) Commit(context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	t.done = true
	return nil
}

func (t *dryRunTx) Rollback(context.Context) error {
	t.done = true
	return nil
}
