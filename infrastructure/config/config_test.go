package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Cache.DetailTTL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPSTREAM_BASE_URL", "https://api.example.com")
	t.Setenv("UPSTREAM_TIMEOUT", "30s")
	t.Setenv("SESSION_IDLE_TTL", "4h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 4*time.Hour, cfg.Session.IdleTTL)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
upstream:
  base_url: "https://file.example.com"
`), 0o644))
	t.Setenv("KGEXPLORER_CONFIG", path)
	t.Setenv("UPSTREAM_BASE_URL", "https://env.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "file overrides defaults")
	assert.Equal(t, "https://env.example.com", cfg.Upstream.BaseURL, "env overrides file")
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	t.Setenv("SERVER_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RedisBackendRequiresURL(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cache.Backend)
}

func TestLoad_MalformedEnvValueFallsBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
