package middleware

import (
    "log/slog"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// RequestLogger writes one structured record per request.  Server errors
// are logged at error level, client errors at warn, the rest at info.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            attrs := []slog.Attr{
                slog.String("method", v.Method),
                slog.String("uri", v.URI),
                slog.Int("status", v.Status),
                slog.Duration("latency", v.Latency),
                slog.String("remote_ip", v.RemoteIP),
                slog.String("request_id", v.RequestID),
            }
            if id := userID(c); id > 0 {
                attrs = append(attrs, slog.Uint64("user_id", id))
            }
            level := slog.LevelInfo
            switch {
            case v.Error != nil || v.Status >= 500:
                level = slog.LevelError
            case v.Status >= 400:
                level = slog.LevelWarn
            }
            if v.Error != nil {
                attrs = append(attrs, slog.String("err", v.Error.Error()))
            }
            log.LogAttrs(c.Request().Context(), level, "request", attrs...)
            return nil
        },
    })
}
