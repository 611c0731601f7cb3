package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/dwload/internal/config"
	"github.com/vvka-141/dwload/internal/db"
	"github.com/vvka-141/dwload/internal/storage"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	authMethod     string
	awsRegion      string
	googleInstance string
	azureTenantID  string
	azureClientID  string
}

// loadFlags holds the flags shared by every command that loads data.
type loadFlags struct {
	schema       string
	dataRoot     string
	partitionDir string
	mode         string
	metricsFile  string
	timeout      time.Duration
	dryRun       bool
}

var (
	connFlags connectionFlags
	loadOpts  loadFlags
)

func resetFlags() {
	connFlags = connectionFlags{}
	loadOpts = loadFlags{}
	verboseFlag = false
	configPath = ""
	runDomains = nil
}

func addConnectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	// Connection string flag (mutually exclusive with granular flags)
	f.StringVar(&connFlags.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username, --sslmode).\n"+
			"Alternative: DWLOAD_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://loader@localhost:5432/warehouse")

	// Granular connection flags (PostgreSQL standard)
	// Precedence: flag > environment variable > dwload.yaml > default
	f.StringVarP(&connFlags.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > dwload.yaml > localhost")
	f.IntVarP(&connFlags.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > dwload.yaml > 5432")
	f.StringVarP(&connFlags.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	f.StringVarP(&connFlags.database, "database", "d", "",
		"Warehouse database name (or $PGDATABASE); overrides the connection string database")
	f.StringVar(&connFlags.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	// Cloud IAM authentication
	f.StringVar(&connFlags.authMethod, "auth", "",
		"Authentication method: standard|aws|google|azure\n"+
			"Passwords are never accepted as flags; standard auth reads\n"+
			"$PGPASSWORD, ~/.pgpass or the connection string")
	f.StringVar(&connFlags.awsRegion, "aws-region", "",
		"AWS region for RDS IAM tokens (overrides $AWS_REGION)")
	f.StringVar(&connFlags.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
	f.StringVar(&connFlags.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	f.StringVar(&connFlags.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")

	_ = cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)
	_ = cmd.RegisterFlagCompletionFunc("auth", completeAuthMethods)
}

func addLoadFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVar(&loadOpts.schema, "schema", "",
		"Warehouse schema (default: $DWLOAD_SCHEMA, dwload.yaml, or analytics)")
	f.StringVar(&loadOpts.dataRoot, "data-root", "",
		"Directory or s3://bucket/prefix holding the extracts\n"+
			"(default: $DWLOAD_DATA_ROOT or data_root in dwload.yaml)")
	f.StringVar(&loadOpts.partitionDir, "partition-dir", "",
		"Directory under the data root holding YYYYMMDD partitions (default: daily)")
	f.StringVar(&loadOpts.mode, "mode", "",
		"partitioned: facts from the partition directory\n"+
			"flat: facts from the data root (full reload)\n"+
			"(default: partitioned)")
	f.StringVar(&loadOpts.metricsFile, "metrics-file", "",
		"Write Prometheus metrics in textfile format after each load.\n"+
			"The domain is appended to the file name: dwload.prom -> dwload_sales.prom")
	f.BoolVar(&loadOpts.dryRun, "dry-run", false,
		"Resolve the partition and read every extract without connecting to the database")
	f.DurationVar(&loadOpts.timeout, "timeout", 0,
		"Abort the load after this long (0 = no limit)\n"+
			"Examples: 30s, 5m, 1h30m")

	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = cmd.RegisterFlagCompletionFunc("data-root", completeDirectories)
}

// loadFileConfig loads .env and the config file. The file is optional unless
// --config names it explicitly.
func loadFileConfig() (*config.FileConfig, error) {
	_ = godotenv.Load()

	path := configPath
	required := path != ""
	if path == "" {
		path = config.FileName
	}
	cfg, err := config.LoadOptional(path, required)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// buildLoadConfig resolves the load settings with the precedence
// flag > environment > dwload.yaml > default, then validates them.
func buildLoadConfig(cmd *cobra.Command, file *config.FileConfig, partitionID string) (dwload.LoadConfig, error) {
	cfg := dwload.LoadConfig{
		Schema:       firstNonEmpty(loadOpts.schema, os.Getenv("DWLOAD_SCHEMA"), file.Schema, dwload.DefaultSchema),
		DataRoot:     firstNonEmpty(loadOpts.dataRoot, os.Getenv("DWLOAD_DATA_ROOT"), file.DataRoot),
		PartitionDir: firstNonEmpty(loadOpts.partitionDir, os.Getenv("DWLOAD_PARTITION_DIR"), file.PartitionDir, dwload.DefaultPartitionDir),
		Mode:         dwload.Mode(strings.ToLower(firstNonEmpty(loadOpts.mode, os.Getenv("DWLOAD_MODE"), file.Mode, string(dwload.ModePartitioned)))),
		PartitionID:  partitionID,
		DryRun:       loadOpts.dryRun,
		MetricsFile:  firstNonEmpty(loadOpts.metricsFile, os.Getenv("DWLOAD_METRICS_FILE"), file.MetricsFile),
		RunID:        os.Getenv(dwload.RunIDEnvVar),
		Verbose:      getVerboseFlag(cmd),
	}

	timeout, err := resolveEffectiveTimeout(cmd, file)
	if err != nil {
		return dwload.LoadConfig{}, err
	}
	cfg.Timeout = timeout

	if err := cfg.Validate(); err != nil {
		return dwload.LoadConfig{}, err
	}
	return cfg, nil
}

// resolveEffectiveTimeout returns the effective timeout, preferring dwload.yaml if the flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, file *config.FileConfig) (time.Duration, error) {
	if cmd.Flags().Changed("timeout") {
		return loadOpts.timeout, nil
	}
	return file.TimeoutDuration()
}

// storageConfig merges S3 settings: environment first, then dwload.yaml.
func storageConfig(file *config.FileConfig) storage.Config {
	s3 := storage.S3ConfigFromEnv(storage.S3Config{})
	s3.Region = firstNonEmpty(s3.Region, file.S3.Region)
	s3.Endpoint = firstNonEmpty(s3.Endpoint, file.S3.Endpoint)
	s3.PathStyle = s3.PathStyle || file.S3.PathStyle
	return storage.Config{S3: s3}
}

// resolveConnectionFromFlags resolves the connection for a domain load and
// tags the session with the domain and run id.
func resolveConnectionFromFlags(file *config.FileConfig, domain, runID string) (*dwload.ConnectionConfig, error) {
	granular := &db.GranularConnFlags{
		Host:     connFlags.host,
		Port:     connFlags.port,
		Username: connFlags.username,
		Database: connFlags.database,
		SSLMode:  connFlags.sslMode,
	}
	cloud := &db.CloudFlags{
		AuthMethod:     connFlags.authMethod,
		AWSRegion:      connFlags.awsRegion,
		GoogleInstance: connFlags.googleInstance,
		AzureTenantID:  connFlags.azureTenantID,
		AzureClientID:  connFlags.azureClientID,
	}

	connConfig, err := db.ResolveConnectionParams(connFlags.connection, granular, cloud, db.LoadFromEnvironment(), &file.Connection)
	if err != nil {
		return nil, err
	}
	if connConfig.AppName == "" {
		connConfig.AppName = applicationName(domain, runID)
	}
	return connConfig, nil
}

// applicationName identifies a load in pg_stat_activity. PostgreSQL
// truncates application_name at 63 bytes; a UUID run id fits.
func applicationName(domain, runID string) string {
	name := dwload.ApplicationName + "/" + domain
	if runID != "" {
		name += "/" + runID
	}
	return name
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(logger dwload.Logger, connConfig *dwload.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Host: %s", connConfig.Host)
	logger.Verbose("  Port: %d", connConfig.Port)
	logger.Verbose("  User: %s", connConfig.Username)
	logger.Verbose("  Database: %s", connConfig.Database)
	logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
	logger.Verbose("  Application Name: %s", connConfig.AppName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
