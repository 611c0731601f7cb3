package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/dwload/internal/retry"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// A domain load holds one connection and one transaction for its lifetime.
const (
	DefaultMaxConns        = 1
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger dwload.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

func newRetryExecutor(logger dwload.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(dwload.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(dwload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(dwload.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewConnectClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Info("Connection attempt %d failed, retrying in %s: %v", attempt+1, delay.Round(time.Millisecond), err)
		})
}

// StandardConnector implements dwload.Connector for username/password
// authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *dwload.ConnectionConfig
	logger        dwload.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a StandardConnector. Retry behavior uses the
// dwload defaults: DefaultRetryMaxAttempts retries with exponential backoff.
func NewStandardConnector(config *dwload.ConnectionConfig, logger dwload.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newRetryExecutor(logger),
	}
}

// Connect establishes a connection pool using standard authentication.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func(context.Context) (string, error) {
		return BuildConnectionString(c.config), nil
	})
}

// connectWithRetry parses the DSN produced by dsn on every attempt, so
// short-lived credentials are refreshed between retries.
func connectWithRetry(
	ctx context.Context,
	executor *retry.Executor,
	config *dwload.ConnectionConfig,
	logger dwload.Logger,
	dsn func(context.Context) (string, error),
) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := executor.Execute(ctx, func(ctx context.Context) error {
		connStr, err := dsn(ctx)
		if err != nil {
			return err
		}

		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}
		configurePool(poolConfig, logger)

		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}

		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *dwload.ConnectionConfig, logger dwload.Logger) (dwload.Connector, error) {
	switch config.AuthMethod {
	case dwload.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case dwload.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case dwload.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case dwload.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("auth method %v: %w", config.AuthMethod, dwload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// Every result carries dwload.ErrTransportFailure.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username
  - Expired IAM token (cloud auth)`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

The warehouse database and the analytics schema must be created
before loading; dwload does not apply DDL.`, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)`

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", dwload.ErrTransportFailure, err)
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", hint, dwload.ErrTransportFailure, err)
}
