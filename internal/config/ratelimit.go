package config

import "time"

// RateLimitConfig configures the Redis token buckets applied to every
// route.  Safe methods draw from a bucket of Capacity tokens; writes
// (order creation, catalog edits) draw from a separate bucket of
// WriteCapacity tokens so a burst of bookings cannot starve browsing.
//   RATE_LIMIT_KEY_STRATEGY – ip, user, route or a combination joined by "_"
//   RATE_LIMIT_DEBUG – expose the bucket key in X-RateLimit-Key
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    WriteCapacity  int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables and clamps them to
// values the limiter can work with.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        WriteCapacity:  envInt("RATE_LIMIT_WRITE_CAPACITY", 10),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    return cfg.Normalize()
}

// Normalize clamps non-positive sizes to 1, a zero interval to one second
// and keeps the TTL at least five intervals long.  A zero WriteCapacity
// falls back to Capacity.
func (c RateLimitConfig) Normalize() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    if c.WriteCapacity <= 0 {
        c.WriteCapacity = c.Capacity
    }
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    return c
}

// CapacityFor returns the bucket size for an HTTP method.
func (c RateLimitConfig) CapacityFor(method string) int {
    switch method {
    case "GET", "HEAD", "OPTIONS":
        return c.Capacity
    }
    return c.WriteCapacity
}
