package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/internal/db"
	"github.com/vvka-141/dwload/internal/loader"
	"github.com/vvka-141/dwload/internal/logging"
	"github.com/vvka-141/dwload/internal/metrics"
	"github.com/vvka-141/dwload/internal/storage"
	"github.com/vvka-141/dwload/pkg/dwload"
)

func newDomainCmd(domain string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   domain + " [YYYYMMDD]",
		Short: fmt.Sprintf("Reload the %s domain from one partition", domain),
		Long: fmt.Sprintf(`Reload every table of the %[1]s domain in a single transaction.

Without a partition argument the latest YYYYMMDD directory under
<data_root>/<partition_dir> is used. A missing extract, a malformed header
or a rejected row rolls the whole domain back.

Examples:
  # Latest partition
  dwload %[1]s --data-root ./extracts -d warehouse

  # Pinned partition, extracts in S3
  dwload %[1]s 20250201 --data-root s3://dw-extracts/prod

  # Check extracts without touching the database
  dwload %[1]s --data-root ./extracts --dry-run`, domain),
		Args: OptionalPartition,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDomain(cmd, domain, partitionArg(args))
		},
	}
	addLoadFlags(cmd)
	addConnectionFlags(cmd)
	return cmd
}

func init() {
	for _, name := range catalog.Names() {
		rootCmd.AddCommand(newDomainCmd(name))
	}
}

func runDomain(cmd *cobra.Command, domainName, partitionID string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	domain, err := catalog.Lookup(domainName)
	if err != nil {
		return err
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := buildLoadConfig(cmd, fileCfg, partitionID)
	if err != nil {
		return err
	}
	if err := catalog.Validate(cfg.Schema); err != nil {
		return err
	}
	if cfg.RunID != "" {
		logger = logger.WithPrefix(cfg.RunID[:min(8, len(cfg.RunID))])
	}

	var open dwload.StoreOpener
	if !cfg.DryRun {
		connConfig, err := resolveConnectionFromFlags(fileCfg, domain.Name, cfg.RunID)
		if err != nil {
			return err
		}
		if verbose {
			logConnectionVerbose(logger, connConfig)
		}
		open = db.NewStoreOpener(connConfig, logger)
	}

	ctx, cancel := newRunContext(cfg.Timeout)
	defer cancel()

	fsys, root, err := storage.Open(ctx, cfg.DataRoot, storageConfig(fileCfg))
	if err != nil {
		return fmt.Errorf("failed to open data root %s: %w", cfg.DataRoot, err)
	}

	collector := metrics.New()
	report, loadErr := loader.NewDomainLoader(domain, cfg, fsys, root, open, logger, collector).Load(ctx)

	if err := collector.WriteTextfile(metricsPath(cfg.MetricsFile, domain.Name)); err != nil {
		logger.Error("%v", err)
	}
	if cfg.DryRun {
		printReport(os.Stdout, report)
	}
	return loadErr
}

// metricsPath names one textfile per domain so the domains of a run do not
// overwrite each other: metrics/dwload.prom becomes metrics/dwload_sales.prom.
func metricsPath(path, domain string) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + domain + ext
}

// printReport writes a per-table summary of a load.
func printReport(w io.Writer, report *loader.LoadReport) {
	partition := report.Partition
	if partition == "" {
		partition = "-"
	}
	fmt.Fprintf(w, "%s  partition=%s  state=%s  dry_run=%t\n", report.Domain, partition, report.State, report.DryRun)
	if report.FailedIn != "" {
		fmt.Fprintf(w, "  failed in %s\n", report.FailedIn)
	}
	for _, t := range report.Tables {
		fmt.Fprintf(w, "  %-9s  %-16s  %10d  %.12s  %s\n", t.Kind, t.Table, t.Rows, t.Checksum, t.Source)
	}
	fmt.Fprintf(w, "  total rows: %d (%s)\n", report.TotalRows(), report.Duration.Round(time.Millisecond))
}
