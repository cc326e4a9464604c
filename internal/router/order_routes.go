package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// RegisterOrders registers the order endpoints.  Every route requires a
// valid JWT; the handler scopes all data to the caller.  Orders are never
// cached since every response is per user.
func RegisterOrders(e *echo.Echo, d Deps, h *handler.OrderHandler) {
	g := e.Group(
		"/v1/orders",
		middleware.JWTAuth(d.Tokens),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer),
	)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
}
