package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, key string) {
	t.Helper()
	if old, ok := os.LookupEnv(key); ok {
		t.Cleanup(func() { os.Setenv(key, old) })
	}
	os.Unsetenv(key)
}

// TestLoadDefaults verifies fallbacks when only the secret is set.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	for _, key := range []string{"HTTP_ADDR", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "LOG_LEVEL", "ALLOWED_ORIGINS"} {
		unsetenv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, "", cfg.RedisPassword)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Empty(t, cfg.AllowedOrigins)
}

// TestLoadParsesAllowedOrigins verifies the comma-separated origin list.
func TestLoadParsesAllowedOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "example.com, *.example.org, ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.AllowedOrigins)
}

// TestLoadRequiresSecret verifies the secret is mandatory.
func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

// TestLoadRejectsBadRedisDB verifies malformed REDIS_DB fails fast.
func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}
