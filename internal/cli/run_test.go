package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwload/pkg/dwload"
)

func TestForwardedFlags(t *testing.T) {
	resetFlags()
	var domains []string
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().StringSliceVar(&domains, "domains", nil, "")
	addLoadFlags(cmd)
	addConnectionFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{
		"--domains", "sales", "--timeout", "5m", "--data-root", "s3://bucket/extracts",
		"-d", "warehouse", "--dry-run",
	}))

	assert.ElementsMatch(t, []string{
		"--data-root=s3://bucket/extracts",
		"--database=warehouse",
		"--dry-run=true",
	}, forwardedFlags(cmd.Flags()))
}

func TestRunCommand_RejectsBadArguments(t *testing.T) {
	err := executeRoot(t, "run", "202502")
	assert.Equal(t, dwload.ExitUsageError, dwload.ExitCodeForError(err))

	err = executeRoot(t, "run", "--domains", "sales,hr")
	assert.ErrorIs(t, err, dwload.ErrUnknownDomain)
}
