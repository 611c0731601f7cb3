package db

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// PoolStore implements dwload.Store on a single connection acquired from
// a Connector's pool.
type PoolStore struct {
	pool   *pgxpool.Pool
	conn   *pgxpool.Conn
	closer io.Closer
	once   sync.Once
}

// OpenStore connects through connector and pins one connection.
// If connector implements io.Closer it is closed with the store.
func OpenStore(ctx context.Context, connector dwload.Connector) (*PoolStore, error) {
	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		closeConnector(connector)
		return nil, fmt.Errorf("failed to acquire connection: %w", Classify(err))
	}

	store := &PoolStore{pool: pool, conn: conn}
	if c, ok := connector.(io.Closer); ok {
		store.closer = c
	}
	return store, nil
}

// NewStoreOpener returns a dwload.StoreOpener that resolves the connector
// lazily, so nothing connects until a loader asks for the store.
func NewStoreOpener(config *dwload.ConnectionConfig, logger dwload.Logger) dwload.StoreOpener {
	return func(ctx context.Context) (dwload.Store, error) {
		connector, err := NewConnector(config, logger)
		if err != nil {
			return nil, err
		}
		logger.Verbose("Connecting to %s", RedactedConnectionString(config))
		return OpenStore(ctx, connector)
	}
}

func closeConnector(connector dwload.Connector) {
	if c, ok := connector.(io.Closer); ok {
		_ = c.Close()
	}
}

// Begin starts a transaction on the pinned connection.
func (s *PoolStore) Begin(ctx context.Context) (dwload.Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", Classify(err))
	}
	return &poolTx{tx: tx}, nil
}

// Close releases the connection and closes the pool.
func (s *PoolStore) Close() {
	s.once.Do(func() {
		s.conn.Release()
		s.pool.Close()
		if s.closer != nil {
			_ = s.closer.Close()
		}
	})
}

// poolTx adapts pgx.Tx to dwload.Tx, classifying every error.
type poolTx struct {
	tx pgx.Tx
}

func (t *poolTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	return tag, Classify(err)
}

// CopyFrom runs the COPY on the transaction's own connection; the
// transaction is open, so the copied rows are part of it.
func (t *poolTx) CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error) {
	tag, err := t.tx.Conn().PgConn().CopyFrom(ctx, r, sql)
	if err != nil {
		return 0, Classify(err)
	}
	return tag.RowsAffected(), nil
}

func (t *poolTx) Commit(ctx context.Context) error {
	return Classify(t.tx.Commit(ctx))
}

func (t *poolTx) Rollback(ctx context.Context) error {
	return Classify(t.tx.Rollback(ctx))
}
