package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: redis
redis:
  addr: localhost:6379
  ttl: 24h
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, CatalogBuiltin, cfg.Catalog.Source, "unset values keep defaults")
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, TTLDuration(cfg.Redis.TTL, 0))
	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "floppy"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Driver = DriverRedis
	assert.Error(t, cfg.Validate(), "redis needs an address")

	cfg = Default()
	cfg.Catalog.Source = CatalogFile
	assert.Error(t, cfg.Validate(), "file catalog needs a path")

	cfg = Default()
	cfg.Storage.Driver = DriverPostgres
	assert.Error(t, cfg.Validate(), "postgres needs a url")
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, TTLDuration("90s", time.Minute))
}
