package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mesophy", cfg.Database.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Monitor.OfflineThreshold)
	assert.Equal(t, 900, cfg.Polling.DefaultIntervalSeconds)
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("MSIGN_SERVER_PORT", "9090")
	t.Setenv("MSIGN_DB_HOST", "db.internal")
	t.Setenv("MSIGN_OFFLINE_THRESHOLD", "15m")
	t.Setenv("MSIGN_DEFAULT_POLL_INTERVAL", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 15*time.Minute, cfg.Monitor.OfflineThreshold)
	assert.Equal(t, 120, cfg.Polling.DefaultIntervalSeconds)
}

func TestEnvOverlayPrecedence(t *testing.T) {
	// The project-prefixed variable wins over the generic alias.
	t.Setenv("MSIGN_DB_HOST", "specific")
	t.Setenv("DB_HOST", "generic")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "specific", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	mutate := func(f func(*Config)) *Config {
		cfg := defaultConfig()
		f(cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"bad server port", mutate(func(c *Config) { c.Server.Port = 0 })},
		{"tls cert without key", mutate(func(c *Config) { c.Server.TLSCert = "/etc/tls/cert.pem" })},
		{"bad database port", mutate(func(c *Config) { c.Database.Port = 70000 })},
		{"no open connections", mutate(func(c *Config) { c.Database.MaxOpenConns = 0 })},
		{"token expiry too short", mutate(func(c *Config) { c.Auth.DeviceTokenExpiry = time.Second })},
		{"offline threshold too short", mutate(func(c *Config) { c.Monitor.OfflineThreshold = time.Second })},
		{"memory threshold over 100", mutate(func(c *Config) { c.Monitor.MemoryWarnPercent = 150 })},
		{"zero polling interval", mutate(func(c *Config) { c.Polling.DefaultIntervalSeconds = 0 })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.validate())
		})
	}

	assert.NoError(t, defaultConfig().validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msignd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8443
monitor:
  memoryWarnPercent: 80
polling:
  defaultIntervalSeconds: 300
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8443, cfg.Server.Port)
	assert.Equal(t, 80.0, cfg.Monitor.MemoryWarnPercent)
	assert.Equal(t, 300, cfg.Polling.DefaultIntervalSeconds)
	// Untouched sections keep their defaults.
	assert.Equal(t, "mesophy", cfg.Database.Name)
}

func TestLoadFile_RejectsBadExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msignd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
