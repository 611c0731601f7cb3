package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVersionInfo_LdflagsOverride(t *testing.T) {
	origV, origC, origD := version, commit, date
	defer func() { version, commit, date = origV, origC, origD }()

	version, commit, date = "1.4.0", "abc123", "2025-02-01"
	v, c, d := resolveVersionInfo()
	assert.Equal(t, "1.4.0", v)
	assert.Equal(t, "abc123", c)
	assert.Equal(t, "2025-02-01", d)
}

func TestResolveVersionInfo_DevFallback(t *testing.T) {
	origV := version
	defer func() { version = origV }()

	version = "dev"
	v, c, _ := resolveVersionInfo()
	assert.NotEmpty(t, v)
	assert.NotEmpty(t, c)
}
