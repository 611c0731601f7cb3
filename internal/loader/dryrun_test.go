package loader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunStore_CountsDataRows(t *testing.T) {
	store := NewDryRunStore()
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)

	_, err = tx.Exec(context.Background(), "TRUNCATE TABLE x")
	require.NoError(t, err)

	rows, err := tx.CopyFrom(context.Background(), strings.NewReader("a,b\n1,2\n3,\n"), "COPY x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	rows, err = tx.CopyFrom(context.Background(), strings.NewReader(""), "COPY y")
	require.NoError(t, err)
	assert.Zero(t, rows)

	require.NoError(t, tx.Commit(context.Background()))
	assert.Error(t, tx.Commit(context.Background()))
	assert.Equal(t, []string{"TRUNCATE TABLE x", "COPY x", "COPY y"}, store.Statements())
}
