package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "bogus")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "cache", cfg.Prefix)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_TLS", "1")
	cfg := LoadRedisConfig()
	assert.Equal(t, "redis:6379", cfg.Addr)
	assert.True(t, cfg.TLS)
}

func TestLoadEventsConfig(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
	t.Setenv("ORDER_EVENTS_ENABLED", "yes")

	cfg := LoadEventsConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "amqp://u:p@mq:5672/", cfg.URL)
	assert.Equal(t, "logs/orders.log", cfg.OrderLogPath)
}

func TestRateLimitCapacityFor(t *testing.T) {
	cfg := RateLimitConfig{Capacity: 30}.Normalize()
	assert.Equal(t, 30, cfg.CapacityFor("GET"))
	assert.Equal(t, 30, cfg.CapacityFor("POST"), "write bucket defaults to the read size")

	cfg = RateLimitConfig{Capacity: 30, WriteCapacity: 5}.Normalize()
	assert.Equal(t, 30, cfg.CapacityFor("HEAD"))
	assert.Equal(t, 5, cfg.CapacityFor("DELETE"))
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_INT", "12a")
	t.Setenv("X_DUR", " 3s ")
	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, 3*time.Second, envDur("X_DUR", time.Second))
	assert.Equal(t, "d", envStr("X_UNSET", "d"))
}
