// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Progress ProgressConfig `mapstructure:"progress"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Examples []string       `mapstructure:"examples"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// BackendConfig points at the research endpoint.
type BackendConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// TimeoutSeconds bounds the outbound call; zero imposes no timeout,
	// matching the backend's unbounded processing window.
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// ProgressConfig tunes the simulated progress timeline.
type ProgressConfig struct {
	TickMs int `mapstructure:"tick_ms"`
}

// NotifyConfig tunes notification deduplication.
type NotifyConfig struct {
	DedupWindowMs int `mapstructure:"dedup_window_ms"`
	Capacity      int `mapstructure:"capacity"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("backend.endpoint", "http://localhost:8000/research")
	v.SetDefault("backend.timeout_seconds", 0)
	v.SetDefault("backend.user_agent", "research-agent/0.1")
	v.SetDefault("progress.tick_ms", 150)
	v.SetDefault("notify.dedup_window_ms", 5000)
	v.SetDefault("notify.capacity", 50)
	v.SetDefault("logging.development", true)
	v.SetDefault("examples", []string{
		"Python web frameworks",
		"JavaScript testing tools",
		"React state management libraries",
		"Database management tools",
		"CI/CD platforms",
		"API development tools",
		"Machine learning libraries",
		"DevOps automation tools",
	})
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Backend.Endpoint == "" {
		return fmt.Errorf("backend.endpoint must be set")
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("backend.timeout_seconds must be >= 0")
	}
	if c.Progress.TickMs <= 0 {
		return fmt.Errorf("progress.tick_ms must be > 0")
	}
	if c.Notify.DedupWindowMs <= 0 {
		return fmt.Errorf("notify.dedup_window_ms must be > 0")
	}
	return nil
}

// BackendTimeout converts the configured timeout into a duration.
func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// TickInterval converts the configured tick period into a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Progress.TickMs) * time.Millisecond
}

// DedupWindow converts the configured dedup window into a duration.
func (c Config) DedupWindow() time.Duration {
	return time.Duration(c.Notify.DedupWindowMs) * time.Millisecond
}
