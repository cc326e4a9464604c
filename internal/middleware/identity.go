package middleware

// identity.go holds the helpers shared by the auth, rate limit and logging
// middleware: where the caller's identity lives in the Echo context and
// how it is read back.

import (
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/auth"
)

// Context keys under which the caller's identity is stored.  Handlers read
// the same keys.
const (
    CtxUserID = "user_id" // uint64
    CtxRole   = "role"    // string
)

// Identify records the caller's identity when the request carries a valid
// bearer token.  Requests without one, or with an invalid one, continue
// anonymously; JWTAuth is what rejects them on protected routes.
func Identify(tokens *auth.TokenIssuer) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearerToken(c); ok {
                if claims, err := tokens.Verify(raw); err == nil {
                    setIdentity(c, claims)
                }
            }
            return next(c)
        }
    }
}

func bearerToken(c echo.Context) (string, bool) {
    h := c.Request().Header.Get(echo.HeaderAuthorization)
    if !strings.HasPrefix(h, "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
    return raw, raw != ""
}

func setIdentity(c echo.Context, claims *auth.Claims) {
    uid, _ := claims.UserID() // Verify already rejected malformed subjects
    c.Set(CtxUserID, uid)
    c.Set(CtxRole, claims.Role)
}

// userID returns the caller's id, or 0 for anonymous requests.
func userID(c echo.Context) uint64 {
    id, _ := c.Get(CtxUserID).(uint64)
    return id
}

// identityKey renders the caller for rate limit keys; "anon" when no user
// is authenticated.
func identityKey(c echo.Context) string {
    if id := userID(c); id > 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
