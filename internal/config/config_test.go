package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10, cfg.PageSizeDefault)
	assert.Equal(t, 100, cfg.PageSizeMax)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/customers?sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnvBuildsDSNFromParts(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"DB_USER":     "app",
		"DB_PASSWORD": "secret",
		"DB_HOST":     "db",
		"DB_PORT":     "6543",
		"DB_NAME":     "crm",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:secret@db:6543/crm?sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnvDatabaseURLWins(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"DATABASE_URL": "postgres://x@y/z",
		"DB_HOST":      "ignored",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://x@y/z", cfg.DatabaseURL)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	_, err := FromEnv(envFrom(map[string]string{
		"STORE_TIMEOUT":     "soon",
		"DB_MAX_OPEN_CONNS": "many",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_TIMEOUT")
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
}

func TestFromEnvRejectsPageSizeBounds(t *testing.T) {
	_, err := FromEnv(envFrom(map[string]string{
		"PAGE_SIZE_DEFAULT": "50",
		"PAGE_SIZE_MAX":     "20",
	}))
	require.Error(t, err)
}

func TestFromEnvSplitsOrigins(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		"CORS_ALLOWED_ORIGINS": "http://localhost:3000, https://crm.example.com ,",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "https://crm.example.com"}, cfg.CORSAllowedOrigins)
}
