package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// Step loads one domain. It returns the process-style exit code of the
// load; err carries detail when the step could not report a code itself.
type Step interface {
	Domain() string
	Run(ctx context.Context, partitionID, runID string) (int, error)
}

// Runner executes steps sequentially and fails fast.
type Runner struct {
	steps    []Step
	logger   dwload.Logger
	newRunID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) { r.newRunID = func() string { return id } }
}

// NewRunner creates a Runner over steps, which run in the given order.
func NewRunner(steps []Step, logger dwload.Logger, opts ...Option) *Runner {
	if logger == nil {
		panic("logger cannot be nil - programming error")
	}
	r := &Runner{steps: steps, logger: logger, newRunID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates partitionID and runs every step with it. The returned code
// is 0 on success, 2 for a malformed partition id, and otherwise the exit
// code of the first failed step; no later step is started.
func (r *Runner) Run(ctx context.Context, partitionID string) (int, error) {
	if err := dwload.ValidatePartitionID(partitionID); err != nil {
		return dwload.ExitUsageError, err
	}

	runID := r.newRunID()
	target := partitionID
	if target == "" {
		target = "latest"
	}
	r.logger.Info("Run %s: partition %s, %d domains", runID, target, len(r.steps))

	start := time.Now()
	for i, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return dwload.ExitGeneralError, fmt.Errorf("run %s canceled before %s: %w", runID, step.Domain(), err)
		}

		r.logger.Info("[%d/%d] %s", i+1, len(r.steps), step.Domain())
		stepStart := time.Now()
		code, err := step.Run(ctx, partitionID, runID)
		if code == dwload.ExitSuccess && err != nil {
			code = dwload.ExitCodeForError(err)
		}
		if code != dwload.ExitSuccess {
			r.logger.Error("%s failed with exit code %d after %s; skipping remaining domains",
				step.Domain(), code, time.Since(stepStart).Round(time.Millisecond))
			return code, &dwload.StepError{Domain: step.Domain(), ExitCode: code, Err: err}
		}
		r.logger.Verbose("%s finished in %s", step.Domain(), time.Since(stepStart).Round(time.Millisecond))
	}

	r.logger.Info("Run %s completed: %d domains in %s", runID, len(r.steps), time.Since(start).Round(time.Millisecond))
	return dwload.ExitSuccess, nil
}

// SelectDomains returns the requested domain names in catalog order,
// deduplicated. No names selects every domain.
func SelectDomains(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return catalog.Names(), nil
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		if _, err := catalog.Lookup(name); err != nil {
			return nil, err
		}
		want[name] = true
	}

	var selected []string
	for _, name := range catalog.Names() {
		if want[name] {
			selected = append(selected, name)
		}
	}
	return selected, nil
}
