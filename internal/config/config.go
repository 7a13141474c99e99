// Package config loads settings from flags, environment variables, .env
// files and an optional YAML config file.
//
// Precedence, highest first: command-line flags bound into viper, the
// SDO_TIMELINE_* environment (including .env.local and .env), the config
// file (~/.sdo-timeline.yaml or ./.sdo-timeline.yaml), then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/sdo-timeline/internal/logger"
)

// EnvPrefix namespaces every environment variable
const EnvPrefix = "SDO_TIMELINE"

// Keys
const (
	KeyConfig       = "config"
	KeyDataDir      = "data_dir"
	KeyDatasetsFile = "datasets_file"
	KeyDatasets     = "datasets"
	KeyOutput       = "output"
	KeyFormat       = "format"
	KeyMergeWindow  = "merge_window"
	KeyHTTPTimeout  = "http_timeout"
	KeyRetries      = "retries"
	KeyDatabaseURL  = "database_url"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyServeAddr    = "serve_addr"
)

// Config is the resolved application configuration
type Config struct {
	ConfigFile string

	DataDir      string
	DatasetsFile string   // empty uses the embedded catalogue
	Datasets     []string // empty builds every dataset
	Output       string   // empty writes to stdout
	Format       string

	MergeWindow time.Duration
	HTTPTimeout time.Duration
	Retries     int

	DatabaseURL string

	LogLevel  string
	LogFormat string

	ServeAddr string
}

// New returns a viper instance with defaults and environment binding set up.
// Flags are bound by the caller before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyDataDir, "~/.local/share/sdo-timeline")
	v.SetDefault(KeyFormat, "csv")
	v.SetDefault(KeyMergeWindow, 5*time.Minute)
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyRetries, 3)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logger.FormatJSON)
	v.SetDefault(KeyServeAddr, ":8080")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// LoadEnvFiles loads .env.local then .env. Variables already set in the
// environment are never overridden, so .env.local wins over .env.
func LoadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
}

// Load reads the config file, if any, and resolves the configuration
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".sdo-timeline")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		ConfigFile:   v.ConfigFileUsed(),
		DataDir:      v.GetString(KeyDataDir),
		DatasetsFile: v.GetString(KeyDatasetsFile),
		Datasets:     splitList(v.GetStringSlice(KeyDatasets)),
		Output:       v.GetString(KeyOutput),
		Format:       strings.ToLower(v.GetString(KeyFormat)),
		MergeWindow:  v.GetDuration(KeyMergeWindow),
		HTTPTimeout:  v.GetDuration(KeyHTTPTimeout),
		Retries:      v.GetInt(KeyRetries),
		DatabaseURL:  v.GetString(KeyDatabaseURL),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
		ServeAddr:    v.GetString(KeyServeAddr),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if c.MergeWindow < 0 {
		return fmt.Errorf("%s must not be negative", KeyMergeWindow)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyHTTPTimeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%s must not be negative", KeyRetries)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	if c.LogFormat != logger.FormatJSON && c.LogFormat != logger.FormatConsole {
		return fmt.Errorf("%s must be %q or %q", KeyLogFormat, logger.FormatJSON, logger.FormatConsole)
	}
	return nil
}

// Logger builds the logger the configuration describes
func (c *Config) Logger() (*logger.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.NewWithFormat(level, c.LogFormat, os.Stderr)
}

// splitList accepts both repeated values and comma-separated strings, as
// environment variables only carry the latter
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
