package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/auth"
)

// JWTAuth returns an Echo middleware that requires a valid Bearer access
// token and injects the token's user id (uint64) and role into the request
// context under CtxUserID and CtxRole.  When Identify already ran for the
// request its result is reused.
func JWTAuth(tokens *auth.TokenIssuer) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if userID(c) > 0 {
                return next(c)
            }
            raw, ok := bearerToken(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := tokens.Verify(raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            setIdentity(c, claims)
            return next(c)
        }
    }
}
