package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/dwload/internal/config"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is deliberately not a flag. Use $PGPASSWORD, ~/.pgpass
// (read by pgx) or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given. Database is
// excluded because -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects and parameterizes cloud IAM authentication.
// The Azure client secret is read from AZURE_CLIENT_SECRET only.
type CloudFlags struct {
	AuthMethod     string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars holds the environment variables connection resolution reads.
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	DWLOAD_CONNECTION_STRING string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                   os.Getenv("PGHOST"),
		PGPORT:                   os.Getenv("PGPORT"),
		PGUSER:                   os.Getenv("PGUSER"),
		PGPASSWORD:               os.Getenv("PGPASSWORD"),
		PGDATABASE:               os.Getenv("PGDATABASE"),
		PGSSLMODE:                os.Getenv("PGSSLMODE"),
		DATABASE_URL:             os.Getenv("DATABASE_URL"),
		DWLOAD_CONNECTION_STRING: os.Getenv("DWLOAD_CONNECTION_STRING"),
		AWS_REGION:               os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:          os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:          os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:      os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves connection parameters with the precedence
// CLI flag > environment > dwload.yaml > default.
//
// A connection string comes from --connection, then $DWLOAD_CONNECTION_STRING,
// then $DATABASE_URL (the last two only when no granular flag is set).
// Otherwise the config is assembled field by field from -h/-p/-U/-d/--sslmode,
// PG* variables and the file's connection section.
//
// Returns an error if both --connection and granular flags are provided.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	file *config.ConnectionConfig,
) (*dwload.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	if file == nil {
		file = &config.ConnectionConfig{}
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf("cannot specify both --connection and granular flags (-h, -p, -U, --sslmode): %w", dwload.ErrInvalidConfig)
	}

	connStr := connStringFlag
	if connStr == "" && granular.IsEmpty() {
		connStr = firstNonEmpty(env.DWLOAD_CONNECTION_STRING, env.DATABASE_URL)
	}

	var cfg *dwload.ConnectionConfig
	var err error
	if connStr != "" {
		cfg, err = ParseConnectionString(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid connection string: %v: %w", err, dwload.ErrInvalidConfig)
		}
		if granular.Database != "" {
			cfg.Database = granular.Database
		}
		if cfg.SSLMode == "" {
			cfg.SSLMode = firstNonEmpty(env.PGSSLMODE, "prefer")
		}
	} else {
		cfg, err = resolveFromGranularParams(granular, env, file)
		if err != nil {
			return nil, err
		}
	}

	if err := applyCloudAuth(cfg, cloud, env, file); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromGranularParams(flags *GranularConnFlags, env *EnvVars, file *config.ConnectionConfig) (*dwload.ConnectionConfig, error) {
	cfg := &dwload.ConnectionConfig{
		AuthMethod:       dwload.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, file.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s', must be an integer: %w", env.PGPORT, dwload.ErrInvalidConfig)
		}
		cfg.Port = port
	case file.Port != 0:
		cfg.Port = file.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, file.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = env.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, file.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, file.SSLMode, "prefer")

	if cfg.Database == "" {
		return nil, fmt.Errorf("no database given (use -d, $PGDATABASE or connection.database in %s): %w", config.FileName, dwload.ErrInvalidConfig)
	}
	return cfg, nil
}

// applyCloudAuth selects the auth method (flag > dwload.yaml > Azure
// environment detection) and attaches its parameters.
func applyCloudAuth(cfg *dwload.ConnectionConfig, flags *CloudFlags, env *EnvVars, file *config.ConnectionConfig) error {
	method, err := dwload.ParseAuthMethod(firstNonEmpty(flags.AuthMethod, file.AuthMethod))
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, file.AzureTenantID)
	clientID := firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, file.AzureClientID)
	if method == dwload.AuthMethodStandard && flags.AuthMethod == "" && file.AuthMethod == "" &&
		(flags.AzureTenantID != "" || flags.AzureClientID != "" || env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != "") {
		method = dwload.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case dwload.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, file.AWSRegion)
	case dwload.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, file.GoogleInstance)
	case dwload.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
		if cfg.SSLMode == "" || cfg.SSLMode == "prefer" {
			cfg.SSLMode = "require"
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
