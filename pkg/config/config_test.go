package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_MAPS_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("SERVER_RATE_LIMIT_PER_SECOND", "")
	t.Setenv("SERVER_RATE_LIMIT_BURST", "")
	t.Setenv("ICONS_DIR", "")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("METRICS_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 50, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 100, cfg.Server.RateLimitBurst)
	assert.Equal(t, "test-key", cfg.Maps.APIKey)
	assert.Equal(t, "data/icons", cfg.Icons.Dir)
	assert.Equal(t, "data/cartodesk.db", cfg.Storage.Path)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("SERVER_RATE_LIMIT_PER_SECOND", "5")
	t.Setenv("SERVER_RATE_LIMIT_BURST", "10")
	t.Setenv("ICONS_DIR", "/var/icons")
	t.Setenv("STORAGE_PATH", "/var/state.db")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 10, cfg.Server.RateLimitBurst)
	assert.Equal(t, "/var/icons", cfg.Icons.Dir)
	assert.Equal(t, "/var/state.db", cfg.Storage.Path)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("SERVER_RATE_LIMIT_PER_SECOND", "not-a-number")
	t.Setenv("METRICS_ENABLED", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Server.RateLimitPerSecond)
	assert.True(t, cfg.Observability.MetricsEnabled)
}
