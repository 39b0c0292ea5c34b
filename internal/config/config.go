// Package config loads librarysim settings from defaults, an optional YAML
// file and LIBRARYSIM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"librarysim/internal/telemetry"
)

const EnvPrefix = "LIBRARYSIM"

// Config holds all configuration options for librarysim.
type Config struct {
	Addr        string           `yaml:"addr" mapstructure:"addr"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"` // empty keeps the journal in memory
	LogLevel    string           `yaml:"log_level" mapstructure:"log_level"`
	SeedFile    string           `yaml:"seed_file" mapstructure:"seed_file"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Tracing     telemetry.Config `yaml:"tracing" mapstructure:"tracing"`
}

// RateLimitConfig bounds request throughput on the HTTP API.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" mapstructure:"rps"`
	Burst int     `yaml:"burst" mapstructure:"burst"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		RateLimit: RateLimitConfig{
			RPS:   50,
			Burst: 100,
		},
		Tracing: telemetry.DefaultConfig(),
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment are used.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("addr", d.Addr)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("seed_file", d.SeedFile)
	v.SetDefault("rate_limit.rps", d.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Validate rejects settings the service cannot run with.
func Validate(cfg Config) error {
	if cfg.Addr == "" {
		return errors.New("addr is required")
	}
	if cfg.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive, got %v", cfg.RateLimit.RPS)
	}
	if cfg.RateLimit.Burst < 1 {
		return fmt.Errorf("rate_limit.burst must be at least 1, got %d", cfg.RateLimit.Burst)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level setting to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
