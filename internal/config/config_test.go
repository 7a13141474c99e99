package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with HOME pointed at it, so
// no real config file or .env is picked up
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, 5*time.Minute, cfg.MergeWindow)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.ServeAddr)
	assert.Empty(t, cfg.ConfigFile)
	assert.Empty(t, cfg.Datasets)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("SDO_TIMELINE_FORMAT", "TSV")
	t.Setenv("SDO_TIMELINE_MERGE_WINDOW", "90s")
	t.Setenv("SDO_TIMELINE_RETRIES", "0")
	t.Setenv("SDO_TIMELINE_DATASETS", "jsocobs_info, text_block_4")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "tsv", cfg.Format)
	assert.Equal(t, 90*time.Second, cfg.MergeWindow)
	assert.Equal(t, 0, cfg.Retries)
	assert.Equal(t, []string{"jsocobs_info", "text_block_4"}, cfg.Datasets)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	content := "format: json\nserve_addr: 127.0.0.1:9000\nlog_format: console\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sdo-timeline.yaml"), []byte(content), 0644))

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServeAddr)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.NotEmpty(t, cfg.ConfigFile)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	dir := isolate(t)

	v := New()
	v.Set(KeyConfig, filepath.Join(dir, "nope.yaml"))

	_, err := Load(v)
	assert.Error(t, err)
}

func TestLoad_EnvFiles(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SDO_TIMELINE_SERVE_ADDR=:7000\nSDO_TIMELINE_LOG_LEVEL=debug\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("SDO_TIMELINE_SERVE_ADDR=:7001\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("SDO_TIMELINE_SERVE_ADDR") // nolint:errcheck
		os.Unsetenv("SDO_TIMELINE_LOG_LEVEL")  // nolint:errcheck
	})

	LoadEnvFiles()

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.ServeAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := Config{HTTPTimeout: time.Second, LogLevel: "info", LogFormat: "json"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative window", func(c *Config) { c.MergeWindow = -time.Second }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative retries", func(c *Config) { c.Retries = -1 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := Config{LogLevel: "warn", LogFormat: "console"}
	l, err := cfg.Logger()
	require.NoError(t, err)
	assert.NotNil(t, l)
}
