package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfigFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatcher_ReloadDeliversNewValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "upstream:\n  rate_limit: 10\n")
	t.Setenv("SESSION_IDLE_TTL", "30m")

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	reloaded := make(chan *Config, 1)
	w.OnReload(func(cfg *Config) { reloaded <- cfg })

	writeConfigFile(t, path, "upstream:\n  rate_limit: 25\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 25.0, cfg.Upstream.RateLimit)
		assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL, "environment overrides apply on reload")
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "server:\n  port: 8080\n")

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	reloaded := make(chan *Config, 1)
	w.OnReload(func(cfg *Config) { reloaded <- cfg })

	writeConfigFile(t, path, "server:\n  port: 99999\n")

	select {
	case <-reloaded:
		t.Fatal("an invalid configuration must not be delivered")
	case <-time.After(reloadDebounce + 700*time.Millisecond):
	}
}
