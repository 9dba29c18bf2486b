// Package config loads the BFA configuration from the environment, an optional
// .env file and an optional givecalc.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultSessionSecret signs session tokens when SESSION_SECRET is unset.
const DefaultSessionSecret = "givecalc-dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Engine
	EngineAPIURL         string
	HTTPTimeout          time.Duration
	MaxRetries           int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	EngineMaxConcurrency int

	// Sessions
	SessionTTL    time.Duration
	SessionSecret string

	// Observability
	OTLPEndpoint string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("engine_api_url", "http://localhost:8000")
	v.SetDefault("http_timeout", 60*time.Second)
	v.SetDefault("max_retries", 1)
	v.SetDefault("initial_backoff", 200*time.Millisecond)
	v.SetDefault("max_backoff", 2*time.Second)
	v.SetDefault("engine_max_concurrency", 16)

	v.SetDefault("session_ttl", 2*time.Hour)
	v.SetDefault("session_secret", DefaultSessionSecret)

	v.SetDefault("otel_exporter_otlp_endpoint", "")
}

// DefaultDirs are searched for configuration files when Load gets none.
func DefaultDirs() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "givecalc"))
	}
	return dirs
}

// Load reads the configuration. Environment variables win over a .env file,
// which wins over givecalc.yaml, which wins over defaults. The first .env and
// the first givecalc.yaml found in dirs are used.
func Load(dirs ...string) (*Config, error) {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("givecalc")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read givecalc.yaml: %w", err)
		}
	}

	if err := mergeDotEnv(v, dirs); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     v.GetInt("port"),
		LogLevel: v.GetString("log_level"),

		EngineAPIURL:         v.GetString("engine_api_url"),
		HTTPTimeout:          v.GetDuration("http_timeout"),
		MaxRetries:           v.GetInt("max_retries"),
		InitialBackoff:       v.GetDuration("initial_backoff"),
		MaxBackoff:           v.GetDuration("max_backoff"),
		EngineMaxConcurrency: v.GetInt("engine_max_concurrency"),

		SessionTTL:    v.GetDuration("session_ttl"),
		SessionSecret: v.GetString("session_secret"),

		OTLPEndpoint: v.GetString("otel_exporter_otlp_endpoint"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeDotEnv lays the first .env file found in dirs over v.
func mergeDotEnv(v *viper.Viper, dirs []string) error {
	for _, dir := range dirs {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err != nil {
			continue
		}

		env := viper.New()
		env.SetConfigFile(path)
		env.SetConfigType("env")
		if err := env.ReadInConfig(); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := v.MergeConfigMap(env.AllSettings()); err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
		return nil
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid PORT %d", c.Port)
	case c.EngineAPIURL == "":
		return errors.New("ENGINE_API_URL must be set")
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("invalid HTTP_TIMEOUT %s", c.HTTPTimeout)
	case c.MaxRetries < 0:
		return fmt.Errorf("invalid MAX_RETRIES %d", c.MaxRetries)
	case c.SessionTTL <= 0:
		return fmt.Errorf("invalid SESSION_TTL %s", c.SessionTTL)
	case c.SessionSecret == "":
		return errors.New("SESSION_SECRET must not be empty")
	}
	return nil
}
