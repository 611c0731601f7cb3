// Package config reads the optional dwload.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vvka-141/dwload/pkg/dwload"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// FileName is the config file looked up in the working directory by default.
const FileName = "dwload.yaml"

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type FileConfig struct {
	Connection   ConnectionConfig `yaml:"connection"`
	Schema       string           `yaml:"schema"`
	DataRoot     string           `yaml:"data_root"`
	PartitionDir string           `yaml:"partition_dir"`
	Mode         string           `yaml:"mode"`
	Timeout      string           `yaml:"timeout"`
	MetricsFile  string           `yaml:"metrics_file"`
	S3           S3Config         `yaml:"s3"`
}

// Load reads and parses the config file at path.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, dwload.ErrInvalidConfig)
	}
	return &cfg, nil
}

// LoadOptional reads path, returning an empty config when the file is missing
// and required is false.
func LoadOptional(path string, required bool) (*FileConfig, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrConfigNotFound) {
		if required {
			return nil, fmt.Errorf("%s: %w: %w", path, ErrConfigNotFound, dwload.ErrInvalidConfig)
		}
		return &FileConfig{}, nil
	}
	return cfg, err
}

// TimeoutDuration parses Timeout; empty means zero (unbounded).
func (c *FileConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout %q: %v: %w", c.Timeout, err, dwload.ErrInvalidConfig)
	}
	return d, nil
}
