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
	t.Chdir(t.TempDir())
	t.Setenv("OTT_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":6002", cfg.Addr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.False(t, cfg.Production)
	assert.False(t, cfg.AdminEnabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /srv/data\ncache_ttl: 90s\nlog_format: text\n"), 0o644))

	t.Setenv("OTT_CONFIG", path)
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_PASS", "pw")
	t.Setenv("VITE_ADSENSE_PUBLISHER_ID", "ca-pub-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.Production)
	assert.True(t, cfg.AdminEnabled())
	assert.Equal(t, "ca-pub-1", cfg.AdsensePublisherID)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OTT_CONFIG", "")
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "cache_ttl")
}

func TestValidate(t *testing.T) {
	cfg := &Config{DataDir: "d", CacheSize: 1, RateLimitPerMinute: 1, RateLimitBurst: 1, PushInterval: time.Second, LogFormat: "xml"}
	assert.Error(t, cfg.Validate())
	cfg.LogFormat = "json"
	assert.NoError(t, cfg.Validate())
}
