package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// fakeStore hands out fakeTx transactions and remembers what they received.
type fakeStore struct {
	mu       sync.Mutex
	tx       *fakeTx
	beginErr error
	closed   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tx: &fakeTx{copied: map[string][][]string{}, failCopy: map[string]error{}}}
}

func (s *fakeStore) Begin(context.Context) (dwload.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

func (s *fakeStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

func (s *fakeStore) opener(opened *int) dwload.StoreOpener {
	return func(context.Context) (dwload.Store, error) {
		*opened++
		return s, nil
	}
}

// fakeTx parses each COPY stream and records its rows per destination table.
type fakeTx struct {
	execs     []string
	copies    []string
	copied    map[string][][]string
	failCopy  map[string]error
	execErr   error
	commitErr error
	commits   int
	rollbacks int
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	if t.execErr != nil {
		return pgconn.CommandTag{}, t.execErr
	}
	return pgconn.NewCommandTag("TRUNCATE TABLE"), nil
}

func (t *fakeTx) CopyFrom(_ context.Context, r io.Reader, sql string) (int64, error) {
	table := tableFromCopy(sql)
	t.copies = append(t.copies, table)

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("COPY from stdin failed: %v", err)
	}
	if failErr, ok := t.failCopy[table]; ok {
		return 0, failErr
	}
	t.copied[table] = records
	return int64(len(records) - 1), nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commits > 0 || t.rollbacks > 0 {
		return errors.New("transaction already closed")
	}
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rollbacks++
	return nil
}

// tableFromCopy extracts the bare table name from COPY "schema"."table" (...).
func tableFromCopy(sql string) string {
	ref := strings.Fields(sql)[1]
	parts := strings.Split(ref, ".")
	return strings.Trim(parts[len(parts)-1], `"`)
}

// fakeRecorder captures recorder callbacks.
type fakeRecorder struct {
	tables []string
	states []State
}

func (r *fakeRecorder) TableLoaded(_, table string, _ int64, _ time.Duration) {
	r.tables = append(r.tables, table)
}

func (r *fakeRecorder) DomainFinished(_ string, state State, _ time.Duration) {
	r.states = append(r.states, state)
}
