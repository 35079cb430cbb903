package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_PATH", "/tmp/setback.db")
	t.Setenv("BACKEND_ADDR", "")
	t.Setenv("PORT", "")
	for _, k := range []string{"APP_ENV", "JWT_TTL", "JWT_ISSUER", "WS_ALLOWED_ORIGINS", "DEBUG_ROUTES", "DEBUG_KEY_HASH"} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "8080")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "setback", cfg.JWTIssuer)
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.DebugRoutes)
	assert.Empty(t, cfg.WSAllowedOrigins)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BACKEND_ADDR", "127.0.0.1:9000")
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")
	t.Setenv("DEBUG_ROUTES", "true")
	t.Setenv("DEBUG_KEY_HASH", "$2a$10$abc")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr, "BACKEND_ADDR wins over PORT")
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.WSAllowedOrigins)
	assert.True(t, cfg.DebugRoutes)
}

func TestLoadFromEnvReportsEveryMissingVar(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("BACKEND_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("DEBUG_ROUTES", "true")
	t.Setenv("DEBUG_KEY_HASH", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	for _, v := range []string{"JWT_SECRET", "DATABASE_PATH", "BACKEND_ADDR", "DEBUG_KEY_HASH"} {
		assert.Contains(t, err.Error(), v)
	}
}

func TestLoadFromEnvRejectsBadDuration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_TTL", "soon")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}
