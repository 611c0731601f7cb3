package dwload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the load pipeline.
// Callers distinguish failure classes with errors.Is().
//
// Example usage:
//
//	_, err := domainLoader.Load(ctx, "20250201")
//	if errors.Is(err, dwload.ErrSourceNotFound) {
//	    // a fact extract is missing from the partition
//	}
var (
	// ErrPartitionNotFound indicates an explicitly requested partition directory does not exist.
	ErrPartitionNotFound = errors.New("partition not found")

	// ErrNoPartitionsAvailable indicates the partition root holds no numeric partition directories.
	ErrNoPartitionsAvailable = errors.New("no partitions available")

	// ErrSourceNotFound indicates a required extract file is missing.
	ErrSourceNotFound = errors.New("source extract not found")

	// ErrMalformedExtract indicates an extract's header or rows do not match what the table needs.
	ErrMalformedExtract = errors.New("malformed extract")

	// ErrConstraintViolation indicates the destination rejected a row (dangling foreign key, NOT NULL, ...).
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrTransportFailure indicates a connection or transaction failure talking to the store.
	ErrTransportFailure = errors.New("transport failure")

	// ErrInvalidPartition indicates a partition argument that is not an 8-digit YYYYMMDD identifier.
	ErrInvalidPartition = errors.New("invalid partition identifier")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnknownDomain indicates a domain name outside the catalog.
	ErrUnknownDomain = errors.New("unknown domain")
)

// RollbackError reports a domain load that failed after its transaction began
// and was rolled back. Unwrap exposes the original cause.
type RollbackError struct {
	Domain string
	State  string
	Err    error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%s load rolled back during %s: %v", e.Domain, e.State, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }

// StepError reports a failed orchestrator step and the exit code it produced.
type StepError struct {
	Domain   string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %s failed with exit code %d: %v", e.Domain, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("step %s failed with exit code %d", e.Domain, e.ExitCode)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, the failed step's code for StepError,
// semantic codes for known errors, and ExitGeneralError (1) otherwise.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.ExitCode != 0 {
		return stepErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidPartition):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod), errors.Is(err, ErrUnknownDomain):
		return ExitConfigError
	case errors.Is(err, ErrPartitionNotFound), errors.Is(err, ErrNoPartitionsAvailable):
		return ExitPartitionError
	case errors.Is(err, ErrSourceNotFound):
		return ExitSourceNotFound
	case errors.Is(err, ErrMalformedExtract):
		return ExitMalformedExtract
	case errors.Is(err, ErrConstraintViolation):
		return ExitConstraintViolation
	case errors.Is(err, ErrTransportFailure):
		return ExitTransportError
	}

	// cobra reports argument and flag misuse as plain errors
	errStr := err.Error()
	for _, pattern := range []string{"unknown flag", "unknown shorthand flag", "unknown command", "arg(s), received", "invalid argument", "required flag"} {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitTransportError
	}

	return ExitGeneralError
}
