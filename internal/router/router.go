package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking/internal/auth"
	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// Deps carries what route middleware needs: the token issuer for
// authentication and Redis for the response cache.
type Deps struct {
	Tokens *auth.TokenIssuer
	Cache  config.CacheConfig
	Redis  *redis.Client // nil disables caching
	Log    *slog.Logger
}

// Handlers bundles the resource handlers mounted under /v1.
type Handlers struct {
	Genres   *handler.GenreHandler
	Actors   *handler.ActorHandler
	Halls    *handler.HallHandler
	Movies   *handler.MovieHandler
	Sessions *handler.SessionHandler
	Orders   *handler.OrderHandler
	Auth     *handler.AuthHandler
}

// RegisterRoutes registers routes that do not require authentication and
// are not versioned: the liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers the identity endpoints.  Register and login are
// public; /v1/me needs a valid access token of any role.
func RegisterAuth(e *echo.Echo, d Deps, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(d.Tokens),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
}

// RegisterAll mounts every route of the service.
func RegisterAll(e *echo.Echo, d Deps, h Handlers, db handler.Pinger) {
	RegisterRoutes(e, db)
	RegisterAuth(e, d, h.Auth)
	RegisterCatalog(e, d, h)
	RegisterOrders(e, d, h.Orders)
}
