package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults loads configuration with no file and checks defaults.
func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000/research", cfg.Backend.Endpoint)
	assert.Zero(t, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, 150*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 5*time.Second, cfg.DedupWindow())
	assert.True(t, cfg.Logging.Development)
	assert.Contains(t, cfg.Examples, "Python web frameworks")
}

// TestLoadFromFile reads settings from a YAML config file.
func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9090
backend:
  endpoint: https://research.internal/v1/research
  timeout_seconds: 60
progress:
  tick_ms: 50
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://research.internal/v1/research", cfg.Backend.Endpoint)
	assert.Equal(t, time.Minute, cfg.BackendTimeout())
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval())
}

// TestLoadMissingFile surfaces the read error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// TestValidate covers the rejection cases.
func TestValidate(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"missing endpoint", func(c *Config) { c.Backend.Endpoint = "" }},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSeconds = -1 }},
		{"zero tick", func(c *Config) { c.Progress.TickMs = 0 }},
		{"zero dedup window", func(c *Config) { c.Notify.DedupWindowMs = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
