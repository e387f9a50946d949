package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, "wishwell_db", cfg.PostgresDB)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL.WishlistItems)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL.SharedWithMe)
	assert.Equal(t, 150*time.Millisecond, cfg.CacheOpTimeout())
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("WISHWELL_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidCacheOpTimeout(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CACHE_OP_TIMEOUT_MS", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_OP_TIMEOUT_MS must be > 0")
}

func TestLoad_CustomCacheTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CACHE_TTL_SHARED_LINK", "30m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL.SharedLink)
}

func TestPostgresDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	dsn := cfg.PostgresConfig().DSN()
	assert.Contains(t, dsn, "postgres://wishwell:")
	assert.Contains(t, dsn, "/wishwell_db?sslmode=disable")
}
