package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8000", cfg.EngineAPIURL)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, config.DefaultSessionSecret, cfg.SessionSecret)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "givecalc.yaml", "port: 7000\nlog_level: warn\nmax_retries: 4\n")
	writeFile(t, dir, ".env", "PORT=9000\nHTTP_TIMEOUT=15s\n")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port, ".env overrides yaml")
	assert.Equal(t, "debug", cfg.LogLevel, "environment overrides files")
	assert.Equal(t, 4, cfg.MaxRetries, "yaml overrides defaults")
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ENGINE_API_URL", "http://engine:8000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://engine:8000", cfg.EngineAPIURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PORT", "70000")

	_, err := config.Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoad_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "givecalc.yaml", "port: [unterminated\n")

	_, err := config.Load(dir)
	assert.Error(t, err)
}
