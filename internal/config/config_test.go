package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENV", "STORAGE", "JWT_SECRET", "TOKEN_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "8081")
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE", "postgres")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.NotEmpty(t, cfg.JWTSecret, "development falls back to a built-in secret")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"ENV": "production", "JWT_SECRET": ""}},
		{"bad duration", map[string]string{"ENV": "development", "TOKEN_TTL": "forever"}},
		{"bad burst", map[string]string{"ENV": "development", "RATE_LIMIT_BURST": "lots"}},
		{"unknown storage", map[string]string{"ENV": "development", "STORAGE": "sqlite"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
