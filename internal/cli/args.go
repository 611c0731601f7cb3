package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// OptionalPartition accepts zero or one YYYYMMDD argument.
// Returns a helpful error message with usage and examples otherwise.
func OptionalPartition(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("accepts at most 1 arg(s), received %d", len(args))
	}
	if len(args) == 0 {
		return nil
	}
	if err := dwload.ValidatePartitionID(args[0]); err != nil {
		return fmt.Errorf(`invalid partition: %w

Usage: %s

Example:
  %s 20250201`, err, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// OptionalDomain accepts zero or one catalog domain name.
func OptionalDomain(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("accepts at most 1 arg(s), received %d", len(args))
	}
	if len(args) == 1 {
		if _, err := catalog.Lookup(args[0]); err != nil {
			return fmt.Errorf("unknown domain %w", err)
		}
	}
	return nil
}

func partitionArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
