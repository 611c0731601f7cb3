package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestReader_HashesEverythingRead(t *testing.T) {
	content := "datekey,amount\n20250201,10.0\n20250201,11.5\n"
	r := NewReader(iotest.OneByteReader(strings.NewReader(content)))

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Equal(t, sha256Hex(content), r.Sum())
	assert.Equal(t, int64(len(content)), r.Size())
}

func TestReader_EmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", r.Sum())
	assert.Zero(t, r.Size())
}

func TestReader_PartialRead(t *testing.T) {
	r := NewReader(strings.NewReader("abcdef"))
	buf := make([]byte, 3)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, sha256Hex("abc"), r.Sum(), "only consumed bytes are hashed")
	assert.Equal(t, int64(3), r.Size())
}
