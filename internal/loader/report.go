package loader

import "time"

// State is a step of the domain load state machine.
type State string

const (
	StateStart          State = "START"
	StateTruncate       State = "TRUNCATE"
	StateLoadDimensions State = "LOAD_DIMENSIONS"
	StateLoadFacts      State = "LOAD_FACTS"
	StateCommit         State = "COMMIT"
	StateRollback       State = "ROLLBACK"

	// StateFailed ends a load that failed before its transaction began.
	StateFailed State = "FAILED"
)

// TableReport describes one table load.
type TableReport struct {
	Table    string
	Kind     string
	Source   string
	Rows     int64
	Bytes    int64
	Checksum string // SHA-256 of the extract
	Duration time.Duration
}

// LoadReport summarizes a domain load, successful or not.
type LoadReport struct {
	Domain    string
	Partition string
	RunID     string
	DryRun    bool
	State     State

	// FailedIn is the state the load was in when it failed.
	FailedIn State

	Tables   []TableReport
	Duration time.Duration
}

// TotalRows sums rows over every loaded table.
func (r *LoadReport) TotalRows() int64 {
	var total int64
	for _, t := range r.Tables {
		total += t.Rows
	}
	return total
}
