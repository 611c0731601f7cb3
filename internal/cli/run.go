package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vvka-141/dwload/internal/logging"
	"github.com/vvka-141/dwload/internal/orchestrator"
)

var runDomains []string

// flags the parent consumes itself instead of forwarding to each domain
var notForwarded = map[string]bool{
	"domains": true,
	"timeout": true,
	"help":    true,
}

var runCmd = &cobra.Command{
	Use:   "run [YYYYMMDD]",
	Short: "Reload every domain in order, stopping at the first failure",
	Long: `Run reloads sales, operations and finance in that order. Each domain runs
as its own dwload process with its own transaction; the first failing domain
stops the run and its exit code becomes the run's exit code. Domains that
committed before the failure are not rolled back.

Flags other than --domains and --timeout are passed on to every domain.
Every domain of a run shares one run id, exported as DWLOAD_RUN_ID and
visible in pg_stat_activity.application_name.

Examples:
  dwload run --data-root ./extracts -d warehouse
  dwload run 20250201 --domains sales,finance`,
	Args: OptionalPartition,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceVar(&runDomains, "domains", nil,
		"Restrict the run to these domains (order stays sales, operations, finance)")
	_ = runCmd.RegisterFlagCompletionFunc("domains", completeDomainNames)
	addLoadFlags(runCmd)
	addConnectionFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	domains, err := orchestrator.SelectDomains(runDomains)
	if err != nil {
		return err
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate the dwload executable: %w", err)
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	timeout, err := resolveEffectiveTimeout(cmd, fileCfg)
	if err != nil {
		return err
	}

	ctx, cancel := newRunContext(timeout)
	defer cancel()

	steps := orchestrator.ExecSteps(executable, domains, forwardedFlags(cmd.Flags()))
	_, err = orchestrator.NewRunner(steps, logger).Run(ctx, partitionArg(args))
	return err
}

// forwardedFlags renders every flag set on the command line as --name=value
// for the child processes.
func forwardedFlags(flags *pflag.FlagSet) []string {
	var out []string
	flags.Visit(func(f *pflag.Flag) {
		if notForwarded[f.Name] {
			return
		}
		out = append(out, fmt.Sprintf("--%s=%s", f.Name, f.Value.String()))
	})
	return out
}
