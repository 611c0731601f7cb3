package dwload_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/dwload/pkg/dwload"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, dwload.ExitSuccess},
		{"general error", errors.New("something went wrong"), dwload.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag --foo"), dwload.ExitUsageError},
		{"accepts args", errors.New("accepts at most 1 arg(s), received 2"), dwload.ExitUsageError},
		{"invalid partition", fmt.Errorf("bad: %w", dwload.ErrInvalidPartition), dwload.ExitUsageError},
		{"invalid config", fmt.Errorf("x: %w", dwload.ErrInvalidConfig), dwload.ExitConfigError},
		{"partition not found", fmt.Errorf("x: %w", dwload.ErrPartitionNotFound), dwload.ExitPartitionError},
		{"no partitions", dwload.ErrNoPartitionsAvailable, dwload.ExitPartitionError},
		{"source not found", dwload.ErrSourceNotFound, dwload.ExitSourceNotFound},
		{"malformed extract", dwload.ErrMalformedExtract, dwload.ExitMalformedExtract},
		{"constraint violation", dwload.ErrConstraintViolation, dwload.ExitConstraintViolation},
		{"transport failure", dwload.ErrTransportFailure, dwload.ExitTransportError},
		{"connection refused text", errors.New("dial tcp: connection refused"), dwload.ExitTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dwload.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_RollbackKeepsCauseCode(t *testing.T) {
	err := &dwload.RollbackError{Domain: "finance", State: "LOAD_FACTS", Err: fmt.Errorf("factfinancecf: %w", dwload.ErrSourceNotFound)}

	if got := dwload.ExitCodeForError(err); got != dwload.ExitSourceNotFound {
		t.Errorf("ExitCodeForError(rollback) = %d, want %d", got, dwload.ExitSourceNotFound)
	}
	if !errors.Is(err, dwload.ErrSourceNotFound) {
		t.Error("RollbackError should unwrap to its cause")
	}
}

func TestExitCodeForError_StepErrorPropagatesChildCode(t *testing.T) {
	err := fmt.Errorf("run aborted: %w", &dwload.StepError{Domain: "operations", ExitCode: 21})

	if got := dwload.ExitCodeForError(err); got != 21 {
		t.Errorf("ExitCodeForError(step) = %d, want 21", got)
	}
}
