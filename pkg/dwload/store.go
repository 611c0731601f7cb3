package dwload

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM, etc.).
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// Store is the transactional destination a domain load writes into.
// A Store holds exactly one connection for its lifetime.
type Store interface {
	// Begin starts the domain's single transaction.
	Begin(ctx context.Context) (Tx, error)

	// Close releases the connection. Idempotent.
	Close()
}

// Tx is the subset of a database transaction the loaders need.
// Exec and CopyFrom never commit; the caller ends the transaction
// with exactly one Commit or Rollback.
type Tx interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// CopyFrom streams r into a COPY ... FROM STDIN statement and
	// returns the number of rows the server ingested.
	CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// StoreOpener connects to the destination. Loaders call it only after
// everything that can fail without a connection has been checked.
type StoreOpener func(ctx context.Context) (Store, error)
