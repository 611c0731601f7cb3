package logging

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vvka-141/dwload/pkg/dwload"
)

func TestWriteFailureBanner_RolledBack(t *testing.T) {
	err := &dwload.RollbackError{
		Domain: "finance",
		State:  "LOAD_FACTS",
		Err:    fmt.Errorf("factfinancecf: /data/daily/20250201/factfinancecf.csv: %w", dwload.ErrSourceNotFound),
	}

	var buf bytes.Buffer
	WriteFailureBanner(&buf, err, false, false)

	out := buf.String()
	if !strings.HasPrefix(out, "ROLLED BACK: finance (during LOAD_FACTS) [exit 21]\n") {
		t.Errorf("Unexpected headline: %q", out)
	}
	if !strings.Contains(out, "factfinancecf.csv") {
		t.Errorf("Expected error message in banner: %q", out)
	}
}

func TestWriteFailureBanner_Failed(t *testing.T) {
	var buf bytes.Buffer
	WriteFailureBanner(&buf, fmt.Errorf("resolve: %w", dwload.ErrNoPartitionsAvailable), false, false)

	if !strings.HasPrefix(buf.String(), "FAILED [exit 20]\n") {
		t.Errorf("Unexpected headline: %q", buf.String())
	}
}

func TestWriteFailureBanner_VerboseListsCauses(t *testing.T) {
	inner := fmt.Errorf("factsales: copy failed: %w", dwload.ErrConstraintViolation)
	err := &dwload.RollbackError{Domain: "sales", State: "LOAD_FACTS", Err: errors.Join(inner, errors.New("rollback failed: conn closed"))}

	var buf bytes.Buffer
	WriteFailureBanner(&buf, err, false, true)

	out := buf.String()
	for _, want := range []string{"  1: ", "constraint violation", "rollback failed: conn closed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in %q", want, out)
		}
	}
}

func TestWriteFailureBanner_NilErrorWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	WriteFailureBanner(&buf, nil, true, true)
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestUseColor_DisabledByEnvironment(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if UseColor(nil) {
		t.Error("Expected NO_COLOR to disable styling")
	}
}
