package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_BOOL", "Off")
	t.Setenv("X_INT", "42")
	t.Setenv("X_BAD_INT", "forty")
	t.Setenv("X_DUR", "90s")
	t.Setenv("X_SET", "get, head,,")

	assert.Equal(t, "value", envStr("X_STR", "d"))
	assert.Equal(t, "d", envStr("X_MISSING", "d"))
	assert.False(t, envBool("X_BOOL", true))
	assert.True(t, envBool("X_MISSING", true))
	assert.Equal(t, 42, envInt("X_INT", 1))
	assert.Equal(t, 1, envInt("X_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, envDur("X_DUR", time.Second))
	assert.Equal(t, time.Second, envDur("X_MISSING", time.Second))
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, envSet("X_SET", ""))
}

func setRequired(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("BCRYPT_COST", "4")
}

func TestLoadMemoryDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("QUEUE_MINUTES_PER_TOKEN", "7")
	t.Setenv("QUEUE_ISSUE_ATTEMPTS", "1")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg := Load()
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Empty(t, cfg.DBHost)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 7*time.Minute, cfg.PerToken())
	assert.Equal(t, 2, cfg.IssueAttempts)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, time.UTC.String(), cfg.Now().Location().String())
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, "user_route", cfg.KeyStrategy)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.Methods["GET"])
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}
