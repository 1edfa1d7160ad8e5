package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "10:30", cfg.Opening.String())
	assert.Equal(t, "21:30", cfg.Closing.String())
	assert.Equal(t, []time.Weekday{time.Tuesday}, cfg.ClosedDays)
	assert.Equal(t, time.Minute, cfg.StatsInterval)
	assert.True(t, cfg.Cache.Methods["GET"])
}

func TestLoadMySQLRequiresCredentials(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("OPENING_TIME", "25:00")
	t.Setenv("CLOSED_WEEKDAY", "caturday")
	t.Setenv("RESTAURANT_TZ", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENING_TIME")
	assert.Contains(t, err.Error(), "CLOSED_WEEKDAY")
	assert.Contains(t, err.Error(), "RESTAURANT_TZ")
}

func TestLoadCustomHours(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("OPENING_TIME", "09:00")
	t.Setenv("CLOSING_TIME", "23:00")
	t.Setenv("CLOSED_WEEKDAY", "none")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "09:00", cfg.Opening.String())
	assert.Equal(t, "23:00", cfg.Closing.String())
	assert.Empty(t, cfg.ClosedDays)
}

func TestLoadRateLimitClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "Yes")
	assert.True(t, envBool("FLAG", false))
	t.Setenv("FLAG", "off")
	assert.False(t, envBool("FLAG", true))
	t.Setenv("FLAG", "maybe")
	assert.True(t, envBool("FLAG", true))
}
