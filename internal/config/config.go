// Package config loads asksql settings from a YAML file, ASKSQL_* environment
// variables and defaults, in that order of precedence (env wins).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config is the full application configuration.
type Config struct {
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Intent    IntentConfig    `mapstructure:"intent"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Parser    ParserConfig    `mapstructure:"parser"`
	History   HistoryConfig   `mapstructure:"history"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Clock     ClockConfig     `mapstructure:"clock"`
}

type WarehouseConfig struct {
	Driver          string `mapstructure:"driver"`
	Project         string `mapstructure:"project"`
	Dataset         string `mapstructure:"dataset"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	CredentialsFile string `mapstructure:"credentials_file"`

	// Sample fills an empty SQLite warehouse with the demo tables.
	Sample bool `mapstructure:"sample"`
}

type IntentConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`

	// Answers backs the static provider: question -> call expression.
	Answers map[string]string `mapstructure:"answers"`
}

type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

type ParserConfig struct {
	Strict bool `mapstructure:"strict"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type ClockConfig struct {
	Timezone string `mapstructure:"timezone"`
	Anchor   string `mapstructure:"anchor"`
}

// Warehouse drivers.
const (
	DriverSQLite   = "sqlite"
	DriverBigQuery = "bigquery"
)

// Intent providers.
const (
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("warehouse.driver", DriverSQLite)
	v.SetDefault("warehouse.project", "your_project")
	v.SetDefault("warehouse.dataset", "ga4_sample_ai_agent")
	v.SetDefault("warehouse.sqlite_path", "warehouse.db")
	v.SetDefault("warehouse.credentials_file", "")
	v.SetDefault("warehouse.sample", false)

	v.SetDefault("intent.provider", ProviderOpenAI)
	v.SetDefault("intent.model", "gpt-4")
	v.SetDefault("intent.api_key", "")
	v.SetDefault("intent.base_url", "")

	v.SetDefault("catalog.dir", "") // builtin only
	v.SetDefault("parser.strict", false)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "asksql-history.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("clock.timezone", "UTC")
	v.SetDefault("clock.anchor", "") // today
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ASKSQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	// The conventional OpenAI variable is honoured when ASKSQL_INTENT_API_KEY is unset.
	_ = v.BindEnv("intent.api_key", "ASKSQL_INTENT_API_KEY", "OPENAI_API_KEY")
	return v
}

// Load reads configuration. An explicit path must exist; otherwise
// ./asksql.yaml and $HOME/.config/asksql/asksql.yaml are tried and a missing
// file is not an error.
func Load(path string) (*Config, error) {
	v := New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("asksql")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "asksql"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates a prepared viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work at runtime.
func (c *Config) Validate() error {
	switch c.Warehouse.Driver {
	case DriverSQLite, DriverBigQuery:
	default:
		return errors.WithHint(
			errors.Newf("unknown warehouse.driver %q", c.Warehouse.Driver),
			"use sqlite or bigquery")
	}
	if c.Warehouse.Driver == DriverSQLite && c.Warehouse.SQLitePath == "" {
		return errors.New("warehouse.sqlite_path is required for the sqlite driver")
	}

	switch c.Intent.Provider {
	case ProviderOpenAI, ProviderStatic:
	default:
		return errors.WithHint(
			errors.Newf("unknown intent.provider %q", c.Intent.Provider),
			"use openai or static")
	}

	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "invalid log.level %q", c.Log.Level)
	}

	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		return errors.Wrapf(err, "invalid clock.timezone %q", c.Clock.Timezone)
	}
	if c.Clock.Anchor != "" {
		if _, err := civil.ParseDate(c.Clock.Anchor); err != nil {
			return errors.WithHint(
				errors.Wrapf(err, "invalid clock.anchor %q", c.Clock.Anchor),
				"use YYYY-MM-DD")
		}
	}
	return nil
}
