package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwload/internal/config"
	"github.com/vvka-141/dwload/pkg/dwload"
)

func TestGranularConnFlags_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		flags GranularConnFlags
		want  bool
	}{
		{"empty flags", GranularConnFlags{}, true},
		{"only host set", GranularConnFlags{Host: "localhost"}, false},
		{"only port set", GranularConnFlags{Port: 5432}, false},
		{"only username set", GranularConnFlags{Username: "loader"}, false},
		{"only database set", GranularConnFlags{Database: "warehouse"}, true},
		{"only sslmode set", GranularConnFlags{SSLMode: "require"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.IsEmpty())
		})
	}
}

func TestResolveConnectionParams_Precedence(t *testing.T) {
	file := &config.ConnectionConfig{Host: "yaml-host", Port: 6000, Username: "yaml-user", Database: "yaml-db", SSLMode: "verify-full"}

	t.Run("flags beat env and file", func(t *testing.T) {
		env := &EnvVars{PGHOST: "env-host", PGPORT: "7000", PGUSER: "env-user", PGDATABASE: "env-db"}
		cfg, err := ResolveConnectionParams("", &GranularConnFlags{Host: "flag-host", Port: 8000, Username: "flag-user", Database: "flag-db"}, nil, env, file)
		require.NoError(t, err)
		assert.Equal(t, "flag-host", cfg.Host)
		assert.Equal(t, 8000, cfg.Port)
		assert.Equal(t, "flag-user", cfg.Username)
		assert.Equal(t, "flag-db", cfg.Database)
		assert.Equal(t, "verify-full", cfg.SSLMode)
	})

	t.Run("env beats file", func(t *testing.T) {
		env := &EnvVars{PGHOST: "env-host", PGPORT: "7000", PGDATABASE: "env-db", PGPASSWORD: "pw"}
		cfg, err := ResolveConnectionParams("", nil, nil, env, file)
		require.NoError(t, err)
		assert.Equal(t, "env-host", cfg.Host)
		assert.Equal(t, 7000, cfg.Port)
		assert.Equal(t, "yaml-user", cfg.Username)
		assert.Equal(t, "env-db", cfg.Database)
		assert.Equal(t, "pw", cfg.Password)
	})

	t.Run("file beats defaults", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, file)
		require.NoError(t, err)
		assert.Equal(t, "yaml-host", cfg.Host)
		assert.Equal(t, 6000, cfg.Port)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", &GranularConnFlags{Database: "warehouse"}, nil, &EnvVars{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
		assert.Equal(t, "prefer", cfg.SSLMode)
		assert.Equal(t, dwload.AuthMethodStandard, cfg.AuthMethod)
	})
}

func TestResolveConnectionParams_ConnectionStrings(t *testing.T) {
	t.Run("flag wins over env strings", func(t *testing.T) {
		env := &EnvVars{DWLOAD_CONNECTION_STRING: "postgresql://env/a", DATABASE_URL: "postgresql://url/b"}
		cfg, err := ResolveConnectionParams("postgresql://flag/c", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "flag", cfg.Host)
	})

	t.Run("DWLOAD_CONNECTION_STRING before DATABASE_URL", func(t *testing.T) {
		env := &EnvVars{DWLOAD_CONNECTION_STRING: "postgresql://env/a", DATABASE_URL: "postgresql://url/b"}
		cfg, err := ResolveConnectionParams("", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "env", cfg.Host)
	})

	t.Run("database flag overrides connection string", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("postgresql://db/a", &GranularConnFlags{Database: "other"}, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "other", cfg.Database)
	})

	t.Run("granular flags ignore DATABASE_URL", func(t *testing.T) {
		env := &EnvVars{DATABASE_URL: "postgresql://url/b"}
		cfg, err := ResolveConnectionParams("", &GranularConnFlags{Host: "h", Database: "d"}, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "h", cfg.Host)
	})

	t.Run("PGSSLMODE fills a connection string without sslmode", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("postgresql://db/a", nil, nil, &EnvVars{PGSSLMODE: "disable"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "disable", cfg.SSLMode)
	})
}

func TestResolveConnectionParams_Errors(t *testing.T) {
	tests := []struct {
		name  string
		conn  string
		flags *GranularConnFlags
		cloud *CloudFlags
		env   *EnvVars
	}{
		{"connection and granular flags", "postgresql://db/a", &GranularConnFlags{Host: "h"}, nil, nil},
		{"bad connection string", "nonsense", nil, nil, nil},
		{"bad PGPORT", "", nil, nil, &EnvVars{PGPORT: "abc", PGDATABASE: "d"}},
		{"no database", "", &GranularConnFlags{Host: "h"}, nil, &EnvVars{}},
		{"unknown auth", "postgresql://db/a", nil, &CloudFlags{AuthMethod: "kerberos"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveConnectionParams(tt.conn, tt.flags, tt.cloud, tt.env, nil)
			assert.Error(t, err)
			assert.NotEqual(t, dwload.ExitGeneralError, dwload.ExitCodeForError(err))
		})
	}
}

func TestResolveConnectionParams_CloudAuth(t *testing.T) {
	t.Run("aws region from env", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("postgresql://db/a", nil, &CloudFlags{AuthMethod: "aws"}, &EnvVars{AWS_REGION: "us-east-2"}, nil)
		require.NoError(t, err)
		assert.Equal(t, dwload.AuthMethodAWSIAM, cfg.AuthMethod)
		assert.Equal(t, "us-east-2", cfg.AWSRegion)
	})

	t.Run("google instance from file", func(t *testing.T) {
		file := &config.ConnectionConfig{AuthMethod: "google", GoogleInstance: "proj:eu:wh", Database: "warehouse"}
		cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, file)
		require.NoError(t, err)
		assert.Equal(t, dwload.AuthMethodGoogleIAM, cfg.AuthMethod)
		assert.Equal(t, "proj:eu:wh", cfg.GoogleInstance)
	})

	t.Run("azure detected from environment", func(t *testing.T) {
		env := &EnvVars{AZURE_TENANT_ID: "t", AZURE_CLIENT_ID: "c", AZURE_CLIENT_SECRET: "s"}
		cfg, err := ResolveConnectionParams("postgresql://db/a", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, dwload.AuthMethodAzureEntraID, cfg.AuthMethod)
		assert.Equal(t, "s", cfg.AzureClientSecret)
		assert.Equal(t, "require", cfg.SSLMode)
	})

	t.Run("explicit standard auth ignores azure environment", func(t *testing.T) {
		env := &EnvVars{AZURE_TENANT_ID: "t"}
		cfg, err := ResolveConnectionParams("postgresql://db/a", nil, &CloudFlags{AuthMethod: "standard"}, env, nil)
		require.NoError(t, err)
		assert.Equal(t, dwload.AuthMethodStandard, cfg.AuthMethod)
	})
}
