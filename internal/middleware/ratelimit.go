package middleware

import (
    "log/slog"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-booking/internal/config"
)

// takeToken keeps {tk = tokens, ts = last refill in ms} in a hash.
// ARGV: now_ms, capacity, refill, interval_ms, ttl_s.
// Returns {allowed, remaining, wait_ms}.
var takeToken = redis.NewScript(`
local now, cap, refill, step, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local tk = tonumber(redis.call('HGET', KEYS[1], 'tk') or cap)
local ts = tonumber(redis.call('HGET', KEYS[1], 'ts') or now)

local steps = math.floor(math.max(now - ts, 0) / step)
if steps > 0 then
    tk = math.min(cap, tk + steps * refill)
    ts = ts + steps * step
end

local ok, wait = 0, 0
if tk >= 1 then
    ok, tk = 1, tk - 1
else
    wait = math.max(step - (now - ts), 0)
end

redis.call('HSET', KEYS[1], 'tk', tk, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tk, wait}
`)

// NewTokenBucket limits requests per key with Redis token buckets, one for
// reads and one for writes.  It fails open: without Redis, or when the
// script errors, requests pass.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    cfg = cfg.Normalize()
    if log == nil {
        log = slog.New(slog.DiscardHandler)
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            method := c.Request().Method
            capacity := cfg.CapacityFor(method)
            key := buildRateKey(cfg, c) + ":" + bucketClass(method)

            ctx := c.Request().Context()
            res, err := takeToken.Run(ctx, rdb, []string{key},
                time.Now().UnixMilli(), capacity, cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second),
            ).Int64Slice()
            if err != nil || len(res) != 3 {
                log.WarnContext(ctx, "ratelimit: script failed, allowing request",
                    slog.String("key", key), slog.Any("err", err))
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if res[0] == 1 {
                return next(c)
            }

            retry := (res[2] + 999) / 1000
            h.Set("Retry-After", strconv.FormatInt(retry, 10))
            log.DebugContext(ctx, "ratelimit: blocked", slog.String("key", key), slog.Int64("wait_ms", res[2]))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "too_many_requests",
                "retry_after": retry,
            })
        }
    }
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func bucketClass(method string) string {
    if isSafe(method) {
        return "r"
    }
    return "w"
}

// buildRateKey composes the bucket key from the configured strategy, e.g.
// "ip_user" keys on both the client address and the caller.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    strategy := strings.ToLower(cfg.KeyStrategy)
    if strategy == "" {
        strategy = "ip_user_route"
    }
    for _, part := range strings.Split(strategy, "_") {
        switch part {
        case "ip":
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            parts = append(parts, "ip", ip)
        case "user":
            parts = append(parts, "user", identityKey(c))
        case "route":
            parts = append(parts, "route", c.Request().Method+" "+c.Path())
        }
    }
    return strings.Join(parts, ":")
}
