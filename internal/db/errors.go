package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/dwload/internal/retry"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// SQLSTATE classes with a dedicated exit code.
const (
	sqlStateClassDataException       = "22"
	sqlStateClassIntegrityConstraint = "23"
)

// Classify tags a database error with the dwload sentinel that decides its
// exit code. Errors that already carry a sentinel, and errors with no
// specific category, are returned unchanged.
func Classify(err error) error {
	if err == nil || hasSentinel(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch class := sqlStateClass(pgErr.Code); {
		case class == sqlStateClassIntegrityConstraint:
			return fmt.Errorf("%w: %w", dwload.ErrConstraintViolation, err)
		case class == sqlStateClassDataException:
			return fmt.Errorf("%w: %w", dwload.ErrMalformedExtract, err)
		case retry.IsTransientSQLState(pgErr.Code):
			return fmt.Errorf("%w: %w", dwload.ErrTransportFailure, err)
		}
		return err
	}

	if isConnectionLoss(err) {
		return fmt.Errorf("%w: %w", dwload.ErrTransportFailure, err)
	}
	return err
}

func sqlStateClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

func hasSentinel(err error) bool {
	for _, sentinel := range []error{
		dwload.ErrConstraintViolation,
		dwload.ErrMalformedExtract,
		dwload.ErrTransportFailure,
		dwload.ErrSourceNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// isConnectionLoss reports errors raised when the server or the network
// went away mid-statement. Cancellation is not connection loss.
func isConnectionLoss(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return retry.NewConnectClassifier().IsTransient(err)
}
