package dwload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess             = 0  // Load or run completed successfully
	ExitGeneralError        = 1  // Unknown or unclassified error
	ExitUsageError          = 2  // CLI usage error (bad partition argument, invalid flags)
	ExitPanic               = 3  // Internal panic (unexpected crash)
	ExitConfigError         = 10 // Invalid configuration
	ExitTransportError      = 11 // Connection or transaction failure talking to the store
	ExitPartitionError      = 20 // Partition not found or none available
	ExitSourceNotFound      = 21 // Extract file missing from the resolved partition
	ExitMalformedExtract    = 22 // Extract header does not match the column mapping
	ExitConstraintViolation = 23 // Destination rejected a row
)

const (
	// DefaultSchema is the warehouse schema owning every catalog table.
	DefaultSchema = "analytics"

	// DefaultPartitionDir is the subdirectory of the data root holding
	// one directory per partition.
	DefaultPartitionDir = "daily"

	// ExtractExtension is appended to a table name to form its extract file name.
	ExtractExtension = ".csv"

	// PartitionIDLength is the fixed width of a YYYYMMDD partition identifier.
	PartitionIDLength = 8

	// DefaultRetryInitialDelay is the default initial delay before the first connect retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between connect retries.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connect retries.
	DefaultRetryMaxAttempts = 3

	// ApplicationName is reported to PostgreSQL as application_name.
	ApplicationName = "dwload"

	// RunIDEnvVar carries the orchestrator's run id into domain child processes.
	RunIDEnvVar = "DWLOAD_RUN_ID"
)
