package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"essayons/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "log", cfg.Mail.Driver)
	assert.Equal(t, 1500*time.Millisecond, cfg.Game.ThinkDelay)
	assert.Equal(t, 15, cfg.Game.WinPoints)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  port: 9000
  cors_origins: ["https://a.example"]
game:
  think_delay: 250ms
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("GAME_WIN_POINTS", "20")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 250*time.Millisecond, cfg.Game.ThinkDelay)
	assert.Equal(t, 20, cfg.Game.WinPoints)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example"}, cfg.Server.CORSOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := config.Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"port", func(c *config.Config) { c.Server.Port = 0 }},
		{"driver", func(c *config.Config) { c.Mail.Driver = "pigeon" }},
		{"smtp host", func(c *config.Config) { c.Mail.Driver = "smtp" }},
		{"nats url", func(c *config.Config) { c.Mail.Driver = "nats" }},
		{"delay", func(c *config.Config) { c.Game.ThinkDelay = -time.Second }},
		{"win points", func(c *config.Config) { c.Game.WinPoints = 0 }},
		{"session ttl", func(c *config.Config) { c.Session.TTL = 0 }},
		{"admin", func(c *config.Config) { c.Admin.Password = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
