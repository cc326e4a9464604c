package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It assumes JWTAuth
// ran before it and stored the role under CtxRole.  Callers whose role is
// not in the allowed set get 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(CtxRole).(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// GuardWrites lets safe methods (GET, HEAD, OPTIONS) through and requires
// an authenticated caller with one of roles for everything else.  Catalog
// resources use it: anyone may read, only admins may write.
func GuardWrites(authn echo.MiddlewareFunc, roles ...string) echo.MiddlewareFunc {
    require := RequireRole(roles...)
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        guarded := authn(require(next))
        return func(c echo.Context) error {
            if isSafe(c.Request().Method) {
                return next(c)
            }
            return guarded(c)
        }
    }
}

// isSafe reports whether method only reads.
func isSafe(method string) bool {
    switch method {
    case http.MethodGet, http.MethodHead, http.MethodOptions:
        return true
    }
    return false
}
