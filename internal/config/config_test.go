package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwload/pkg/dwload"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AllFields(t *testing.T) {
	path := writeConfig(t, `connection:
  host: warehouse.internal
  port: 5433
  username: loader
  database: warehouse
  sslmode: require
  auth_method: aws
  aws_region: eu-west-1

schema: analytics
data_root: s3://extracts/csv
partition_dir: daily
mode: partitioned
timeout: 45m
metrics_file: /var/lib/node_exporter/dwload.prom

s3:
  region: eu-west-1
  endpoint: http://minio:9000
  path_style: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warehouse.internal", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "loader", cfg.Connection.Username)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Connection.AWSRegion)
	assert.Equal(t, "analytics", cfg.Schema)
	assert.Equal(t, "s3://extracts/csv", cfg.DataRoot)
	assert.Equal(t, "daily", cfg.PartitionDir)
	assert.Equal(t, "partitioned", cfg.Mode)
	assert.Equal(t, "/var/lib/node_exporter/dwload.prom", cfg.MetricsFile)
	assert.True(t, cfg.S3.PathStyle)
	assert.Equal(t, "http://minio:9000", cfg.S3.Endpoint)

	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, d)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "connection: [unclosed"))
	assert.ErrorIs(t, err, dwload.ErrInvalidConfig)
}

func TestLoadOptional(t *testing.T) {
	missing := filepath.Join(t.TempDir(), FileName)

	cfg, err := LoadOptional(missing, false)
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, cfg)

	_, err = LoadOptional(missing, true)
	assert.ErrorIs(t, err, dwload.ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestTimeoutDuration(t *testing.T) {
	d, err := (&FileConfig{}).TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = (&FileConfig{Timeout: "soon"}).TimeoutDuration()
	assert.ErrorIs(t, err, dwload.ErrInvalidConfig)
}
