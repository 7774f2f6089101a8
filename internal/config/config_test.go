package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("AUTH_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, "popx_client", cfg.Session.CookieName)
	assert.Equal(t, int64(2<<20), cfg.Session.MaxPictureBytes)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Zero(t, cfg.Storage.RecordTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("AUTH_MODE", "accounts")
	t.Setenv("STORAGE_RECORD_TTL_HOURS", "48")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, AuthModeAccounts, cfg.Auth.Mode)
	assert.Equal(t, 48*time.Hour, cfg.Storage.RecordTTL())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "etcd")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	require.Error(t, err)
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, AppConfig{Env: "Local"}.IsDevelopment())
	assert.False(t, AppConfig{Env: "production"}.IsDevelopment())
}

func TestLoadRejectsDefaultSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_CLIENT_TOKEN_SECRET", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_CLIENT_TOKEN_SECRET")

	t.Setenv("AUTH_CLIENT_TOKEN_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.Auth.ClientTokenSecret)
}

func TestLoadAcceptsDefaultSecretInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_CLIENT_TOKEN_SECRET", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultClientTokenSecret, cfg.Auth.ClientTokenSecret)
}
