package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/vvka-141/dwload/pkg/dwload"
)

// childGracePeriod is how long a canceled child may spend rolling back
// after the interrupt before it is killed.
const childGracePeriod = 30 * time.Second

// ExecStep runs a domain load as a child process:
//
//	<Command...> <domain> [partition] <Forward...>
//
// The child inherits the environment plus DWLOAD_RUN_ID.
type ExecStep struct {
	Name    string
	Command []string
	Forward []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// ExecSteps builds one ExecStep per domain re-invoking executable.
func ExecSteps(executable string, domains []string, forward []string) []Step {
	steps := make([]Step, len(domains))
	for i, domain := range domains {
		steps[i] = &ExecStep{
			Name:    domain,
			Command: []string{executable},
			Forward: forward,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		}
	}
	return steps
}

func (s *ExecStep) Domain() string { return s.Name }

// Args returns the child's argument list, excluding the executable.
func (s *ExecStep) Args(partitionID string) []string {
	args := append([]string{}, s.Command[1:]...)
	args = append(args, s.Name)
	if partitionID != "" {
		args = append(args, partitionID)
	}
	return append(args, s.Forward...)
}

// Run starts the child and waits for it. A child that exits non-zero
// yields its exit code with a nil error.
func (s *ExecStep) Run(ctx context.Context, partitionID, runID string) (int, error) {
	if len(s.Command) == 0 {
		return dwload.ExitGeneralError, fmt.Errorf("%s: no command to execute", s.Name)
	}

	cmd := exec.CommandContext(ctx, s.Command[0], s.Args(partitionID)...)
	cmd.Env = append(os.Environ(), dwload.RunIDEnvVar+"="+runID)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = childGracePeriod

	err := cmd.Run()
	if err == nil {
		return dwload.ExitSuccess, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code, nil
		}
		// killed by a signal
		return dwload.ExitGeneralError, fmt.Errorf("%s: %w", s.Name, err)
	}
	return dwload.ExitGeneralError, fmt.Errorf("%s: failed to start %s: %w", s.Name, s.Command[0], err)
}
