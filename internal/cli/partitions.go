package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dwload/internal/partition"
	"github.com/vvka-141/dwload/internal/storage"
)

var partitionsCmd = &cobra.Command{
	Use:   "partitions",
	Short: "List the partitions available under the data root",
	Long: `Partitions prints every YYYYMMDD directory under <data_root>/<partition_dir>,
oldest first. The last one is what a load without a partition argument uses.`,
	Args: cobra.NoArgs,
	RunE: runPartitions,
}

func init() {
	rootCmd.AddCommand(partitionsCmd)
	partitionsCmd.Flags().StringVar(&loadOpts.dataRoot, "data-root", "",
		"Directory or s3://bucket/prefix holding the extracts")
	partitionsCmd.Flags().StringVar(&loadOpts.partitionDir, "partition-dir", "",
		"Directory under the data root holding YYYYMMDD partitions (default: daily)")
}

func runPartitions(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := buildLoadConfig(cmd, fileCfg, "")
	if err != nil {
		return err
	}

	ctx := context.Background()
	fsys, root, err := storage.Open(ctx, cfg.DataRoot, storageConfig(fileCfg))
	if err != nil {
		return fmt.Errorf("failed to open data root %s: %w", cfg.DataRoot, err)
	}
	return listPartitions(ctx, os.Stdout, fsys, fsys.Join(root, cfg.PartitionDir))
}

func listPartitions(ctx context.Context, w io.Writer, fsys storage.FS, dir string) error {
	ids, err := partition.NewResolver(fsys, dir).List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintf(os.Stderr, "No partitions under %s\n", dir)
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}
