package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dwload/internal/config"
	"github.com/vvka-141/dwload/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "dwload",
	Short: "Partitioned bulk loader for the analytics warehouse",
	Long: `dwload replaces the contents of a warehouse domain (sales, operations,
finance) with the CSV extracts of one partition.

Each domain load runs in a single transaction:
  TRUNCATE -> LOAD_DIMENSIONS -> LOAD_FACTS -> COMMIT
and any failure rolls the whole domain back, leaving the previous contents
in place. 'dwload run' loads every domain in order and stops at the first
failure.

Extract layout:
  <data_root>/<dimension>.csv
  <data_root>/<partition_dir>/<YYYYMMDD>/<fact>.csv

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments, flags or partition id)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection or transport failure
  20 - Partition not found or none available
  21 - Extract file missing
  22 - Malformed extract
  23 - Constraint violation`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	verboseFlag bool
	configPath  string
)

// Execute runs the root command and prints the failure banner on error.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	err := rootCmd.Execute()
	if err != nil {
		logging.WriteFailureBanner(os.Stderr, err, logging.UseColor(os.Stderr), verboseFlag)
	}
	return err
}

func init() {
	// -h is reserved for --host, as in psql
	rootCmd.PersistentFlags().Bool("help", false, "Help for dwload")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		fmt.Sprintf("Path to the config file (default ./%s, optional)", config.FileName))
}

// getVerboseFlag safely retrieves the verbose flag value. Commands invoked
// directly (outside Execute) have no merged persistent flags.
func getVerboseFlag(cmd *cobra.Command) bool {
	if cmd.Flags().Lookup("verbose") == nil {
		return verboseFlag
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
