package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	t.Setenv("ARENA_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "data/maps", cfg.Storage.Root)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "MAPS", cfg.EventBus.Stream)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  rest_port: 9000
  node_id: node-7
storage:
  backend: badger
  root: /var/lib/arena
cache:
  enabled: true
  redis_url: localhost:6379
  ttl: 30s
loader:
  workers: 3
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
	assert.Equal(t, "node-7", cfg.Server.NodeID)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/arena", cfg.Storage.Root)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.Loader.Workers)
	// значения по умолчанию для незаданных полей
	assert.Equal(t, "arena_maps", cfg.Storage.Table)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: memory\n"), 0644))
	t.Setenv("ARENA_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestPortFallbacks(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("ARENA_REST_PORT", "")
	assert.Equal(t, 8088, s.GetRESTPort())

	t.Setenv("ARENA_REST_PORT", "9999")
	assert.Equal(t, 9999, s.GetRESTPort())

	t.Setenv("ARENA_METRICS_PORT", "not-a-port")
	assert.Equal(t, 2112, s.GetMetricsPort())
}

func TestJWTSecretFallback(t *testing.T) {
	t.Setenv("ARENA_JWT_SECRET", "from-env")
	a := AuthConfig{}
	assert.Equal(t, "from-env", a.GetJWTSecret())
	a.JWTSecret = "from-config"
	assert.Equal(t, "from-config", a.GetJWTSecret())
}

func TestAuthUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  token_ttl: 2h
  users:
    alice: "$2a$10$abcdefghijklmnopqrstuv"
    bob: "$2a$10$zyxwvutsrqponmlkjihgfe"
  admins: [alice]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Len(t, cfg.Auth.Users, 2)
	assert.True(t, cfg.Auth.IsAdmin("alice"))
	assert.False(t, cfg.Auth.IsAdmin("bob"))

	assert.Equal(t, 24*time.Hour, Default().Auth.TokenTTL)
}
