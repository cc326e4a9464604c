package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-booking/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    size     int64
    limit    int64
    overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    cw.size += int64(len(b))
    if cw.limit > 0 && cw.size > cw.limit {
        cw.overflow = true
    }
    if !cw.overflow {
        cw.buf.Write(b)
    }
    return cw.ResponseWriter.Write(b)
}

// cacheNamespace returns the key prefix shared by every entry of a
// resource, e.g. "cache:movies:".
func cacheNamespace(cfg config.CacheConfig, namespace string) string {
    return cfg.Prefix + ":" + namespace + ":"
}

// cacheKeyFrom keys an entry by method, URL path and raw query, so list
// and detail responses and every filter combination are stored apart.
func cacheKeyFrom(cfg config.CacheConfig, namespace string, c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + " " + r.URL.Path + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%s%x", cacheNamespace(cfg, namespace), sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewRedisCache caches successful responses of the configured methods
// under namespace.  Headers are stored with the body so hits are served
// byte for byte.  Without Redis the middleware is a no-op.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, namespace string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKeyFrom(cfg, namespace, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, "X-Cache") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    _, err := c.Response().Write(body)
                    return err
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.overflow {
                return nil
            }
            hdr := c.Response().Header().Clone()
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                _ = rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

// InvalidateCache purges the given namespaces after every successful
// write (non-safe method answered with 2xx), so cached reads never outlive
// the data they were built from.  Errors are logged and otherwise ignored.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client, log *slog.Logger, namespaces ...string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil || len(namespaces) == 0 {
        return passThrough
    }
    if log == nil {
        log = slog.New(slog.DiscardHandler)
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            if isSafe(c.Request().Method) {
                return err
            }
            if status := c.Response().Status; err != nil || status < 200 || status >= 300 {
                return err
            }
            ctx := context.WithoutCancel(c.Request().Context())
            for _, ns := range namespaces {
                if n, perr := purgeNamespace(ctx, rdb, cacheNamespace(cfg, ns)); perr != nil {
                    log.WarnContext(ctx, "cache purge failed", slog.String("namespace", ns), slog.Any("err", perr))
                } else if n > 0 {
                    log.DebugContext(ctx, "cache purged", slog.String("namespace", ns), slog.Int("keys", n))
                }
            }
            return nil
        }
    }
}

// purgeNamespace deletes every key starting with prefix using SCAN, so it
// never blocks Redis the way KEYS would.
func purgeNamespace(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
    var cursor uint64
    deleted := 0
    for {
        keys, next, err := rdb.Scan(ctx, cursor, prefix+"*", 200).Result()
        if err != nil {
            return deleted, err
        }
        if len(keys) > 0 {
            if err := rdb.Del(ctx, keys...).Err(); err != nil {
                return deleted, err
            }
            deleted += len(keys)
        }
        if next == 0 {
            return deleted, nil
        }
        cursor = next
    }
}
