package dwload

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Mode selects where fact extracts are read from.
type Mode string

const (
	// ModePartitioned reads facts from <data_root>/<partition_dir>/<YYYYMMDD>/.
	ModePartitioned Mode = "partitioned"

	// ModeFlat reads facts from the data root alongside the dimensions (full reload).
	ModeFlat Mode = "flat"
)

var partitionIDPattern = regexp.MustCompile(`^[0-9]{8}$`)

// ValidatePartitionID reports whether id is a fixed-width YYYYMMDD identifier.
// An empty id is valid and means "latest available".
func ValidatePartitionID(id string) error {
	if id == "" {
		return nil
	}
	if !partitionIDPattern.MatchString(id) {
		return fmt.Errorf("%q must be %d digits in YYYYMMDD form: %w", id, PartitionIDLength, ErrInvalidPartition)
	}
	return nil
}

// LoadConfig contains everything a domain load needs besides the connection.
type LoadConfig struct {
	// Schema is the warehouse schema holding the catalog tables.
	Schema string

	// DataRoot holds dimension extracts and the partition directory.
	// A local path or an s3://bucket/prefix URL.
	DataRoot string

	// PartitionDir is the subdirectory of DataRoot holding partitions.
	PartitionDir string

	// Mode selects partitioned or flat fact loading.
	Mode Mode

	// PartitionID pins the partition; empty selects the latest one.
	PartitionID string

	// Timeout bounds a whole load; zero means unbounded.
	Timeout time.Duration

	// DryRun reads and normalizes every extract without touching the database.
	DryRun bool

	// MetricsFile receives a Prometheus textfile after the load, if set.
	MetricsFile string

	// RunID correlates domain loads started by the same orchestrated run.
	RunID string

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.Schema == "" {
		errs = append(errs, fmt.Errorf("Schema is required: %w", ErrInvalidConfig))
	}

	if c.DataRoot == "" {
		errs = append(errs, fmt.Errorf("DataRoot is required: %w", ErrInvalidConfig))
	}

	switch c.Mode {
	case ModePartitioned:
		if c.PartitionDir == "" {
			errs = append(errs, fmt.Errorf("PartitionDir is required in partitioned mode: %w", ErrInvalidConfig))
		}
	case ModeFlat:
		if c.PartitionID != "" {
			errs = append(errs, fmt.Errorf("a partition cannot be pinned in flat mode: %w", ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("mode %q must be %q or %q: %w", c.Mode, ModePartitioned, ModeFlat, ErrInvalidConfig))
	}

	if err := ValidatePartitionID(c.PartitionID); err != nil {
		errs = append(errs, err)
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance)
	// required for AuthMethodGoogleIAM.
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google Cloud SQL IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ParseAuthMethod maps a config or flag value to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}
