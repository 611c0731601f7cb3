package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/internal/storage"
)

func TestWriteCatalog(t *testing.T) {
	finance, err := catalog.Lookup(catalog.Finance)
	require.NoError(t, err)

	var buf bytes.Buffer
	writeCatalog(&buf, []catalog.Domain{finance}, false)
	out := buf.String()

	assert.Contains(t, out, "DOMAIN")
	assert.Contains(t, out, "dimglaccount")
	assert.Contains(t, out, "factfinancecf")
	assert.Contains(t, out, "regionkey: nullable-int")
	assert.NotContains(t, out, "factsales")
}

func TestListPartitions(t *testing.T) {
	mfs := storage.NewMemoryFileSystem()
	mfs.AddDir("/data/daily/20250201")
	mfs.AddDir("/data/daily/20250115")
	mfs.AddDir("/data/daily/tmp")

	var buf bytes.Buffer
	require.NoError(t, listPartitions(context.Background(), &buf, mfs, "/data/daily"))
	assert.Equal(t, "20250115\n20250201\n", buf.String())

	buf.Reset()
	require.NoError(t, listPartitions(context.Background(), &buf, mfs, "/elsewhere"))
	assert.Empty(t, buf.String())
}
