package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "SERVER_ADDR", "JWT_SECRET", "SESSION_TTL",
		"APP_ENV", "MAX_DB_CONNECTIONS", "DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddr)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 25, cfg.MaxDBConnections)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "file:alpha.db")
	t.Setenv("SERVER_ADDR", "0.0.0.0:9000")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MAX_DB_CONNECTIONS", "50")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file:alpha.db", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddr)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 50, cfg.MaxDBConnections)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SESSION_TTL", "-1h")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SESSION_TTL", "one week")
	t.Setenv("MAX_DB_CONNECTIONS", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, 25, cfg.MaxDBConnections)
}
