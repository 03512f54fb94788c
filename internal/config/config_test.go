package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  username: plume
  password: secret
  database: plume
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 5841, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"technology", "finance"}, cfg.Collector.Topics)
	assert.Equal(t, 5, cfg.Collector.MaxPerTopic)
	assert.Equal(t, "en", cfg.Collector.Language)
	assert.Equal(t, "US", cfg.Collector.Region)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Models.BaseURL)
	assert.Equal(t, "self-help", cfg.Affiliate.DefaultCategory)
	assert.Equal(t, "computers-and-internet", cfg.Affiliate.Categories["technology"])
	assert.Equal(t, "15m", cfg.Twitter.MinPostInterval)
	assert.Equal(t, "2h", cfg.Scheduler.CycleInterval)
	assert.Equal(t, "168h", cfg.Scheduler.OptimizeInterval)
}

func TestLoadConfig_ExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9000
  mode: release
collector:
  topics:
    - health
  max_per_topic: 3
scheduler:
  enabled: true
  cycle_interval: 30m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, []string{"health"}, cfg.Collector.Topics)
	assert.Equal(t, 3, cfg.Collector.MaxPerTopic)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "30m", cfg.Scheduler.CycleInterval)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
