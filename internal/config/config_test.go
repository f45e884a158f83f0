package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fewston/stile/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, ttl)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
log_level: debug
session_ttl: 30m
redis:
  addr: "localhost:6379"
  db: 2
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestLoad_BadTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_ttl: soon\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}
