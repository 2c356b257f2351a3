package voicebank

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "VOICEBANK"

// LoadConfig reads the TOML file at path. Every key can be overridden by an
// environment variable named after it, e.g. VOICEBANK_LOG_LEVEL for
// log.level.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "toml",
		WeaklyTypedInput: true,
		Result:           &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("voices.directories", []string{})
	v.SetDefault("voices.pattern", "*/*.config")
	v.SetDefault("voices.base_location", "")
	v.SetDefault("voices.packaged_dir", "")
	v.SetDefault("voices.include_bundled", true)
	v.SetDefault("voices.workers", 4)
	v.SetDefault("voices.load_timeout", "30s")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:voicebank.db")
	v.SetDefault("database.timeout", "2m")
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Voices   VoicesConfig   `toml:"voices"`
	Database DatabaseConfig `toml:"database"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type VoicesConfig struct {
	// Directories are scanned for definitions matching Pattern.
	Directories []string `toml:"directories"`
	Pattern     string   `toml:"pattern"`
	// BaseLocation replaces MARY_BASE in resource paths.
	BaseLocation string `toml:"base_location"`
	// PackagedDir, when set, serves packaged resources ahead of the bundled ones.
	PackagedDir    string        `toml:"packaged_dir"`
	IncludeBundled bool          `toml:"include_bundled"`
	Workers        int           `toml:"workers"`
	LoadTimeout    time.Duration `toml:"load_timeout"`
}

type DatabaseConfig struct {
	Enabled bool   `toml:"enabled"`
	Driver  string `toml:"driver"`
	Dsn     string `toml:"dsn"`
	// Timeout bounds connecting, migrating and syncing the catalog.
	Timeout time.Duration `toml:"timeout"`
}

// GooseDialect maps the database driver name onto the goose dialect.
func (c DatabaseConfig) GooseDialect() (string, error) {
	switch c.Driver {
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	case "mysql":
		return "mysql", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// WithTimeout derives a context bounded by timeout. A zero or negative
// timeout leaves the context without a deadline.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
