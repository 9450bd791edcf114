package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.ListenAddr)
	assert.Empty(t, cfg.DBURL)
	assert.Equal(t, 10*time.Second, cfg.InactivityWindow)
	assert.Equal(t, 15*time.Second, cfg.SweepInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("DB_URL", "postgres://localhost/batepapo")
	t.Setenv("INACTIVITY_WINDOW", "30s")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/batepapo", cfg.DBURL)
	assert.Equal(t, 30*time.Second, cfg.InactivityWindow)
	assert.Equal(t, time.Minute, cfg.SweepInterval)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	base := Config{
		ListenAddr:       ":5001",
		InactivityWindow: 10 * time.Second,
		SweepInterval:    15 * time.Second,
		LogLevel:         "info",
	}
	require.NoError(t, base.Validate())

	cfg := base
	cfg.ListenAddr = ""
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.InactivityWindow = 0
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.SweepInterval = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())
}
