package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asksql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadWithViper(New())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Warehouse.Driver)
	assert.Equal(t, "your_project", cfg.Warehouse.Project)
	assert.Equal(t, "ga4_sample_ai_agent", cfg.Warehouse.Dataset)
	assert.Equal(t, ProviderOpenAI, cfg.Intent.Provider)
	assert.Equal(t, "gpt-4", cfg.Intent.Model)
	assert.False(t, cfg.Parser.Strict)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "UTC", cfg.Clock.Timezone)
	assert.Empty(t, cfg.Clock.Anchor)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
warehouse:
  driver: bigquery
  project: acme
intent:
  provider: static
  answers:
    bounce rate: get_bounce_rate(date_range='last month')
parser:
  strict: true
clock:
  timezone: Europe/Paris
  anchor: "2025-06-12"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverBigQuery, cfg.Warehouse.Driver)
	assert.Equal(t, "acme", cfg.Warehouse.Project)
	assert.Equal(t, "ga4_sample_ai_agent", cfg.Warehouse.Dataset, "unset keys keep defaults")
	assert.Equal(t, ProviderStatic, cfg.Intent.Provider)
	assert.Equal(t, "get_bounce_rate(date_range='last month')", cfg.Intent.Answers["bounce rate"])
	assert.True(t, cfg.Parser.Strict)
	assert.Equal(t, "2025-06-12", cfg.Clock.Anchor)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "warehouse:\n  dataset: from_file\n")
	t.Setenv("ASKSQL_WAREHOUSE_DATASET", "from_env")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Warehouse.Dataset)
	assert.Equal(t, "sk-test", cfg.Intent.APIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		hint   bool
	}{
		{"unknown driver", func(c *Config) { c.Warehouse.Driver = "postgres" }, true},
		{"unknown provider", func(c *Config) { c.Intent.Provider = "gemini" }, true},
		{"bad timezone", func(c *Config) { c.Clock.Timezone = "Mars/Olympus" }, false},
		{"bad anchor", func(c *Config) { c.Clock.Anchor = "12/06/2025" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"history without path", func(c *Config) { c.History.Path = "" }, false},
		{"sqlite without path", func(c *Config) { c.Warehouse.SQLitePath = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithViper(New())
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			if tt.hint {
				assert.NotEmpty(t, errors.FlattenHints(err))
			}
		})
	}
}
