package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// resource is the handler set of a CRUD collection.
type resource interface {
	List(echo.Context) error
	Get(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Patch(echo.Context) error
	Delete(echo.Context) error
}

func mount(g *echo.Group, h resource) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}

// RegisterCatalog mounts genres, actors, cinema halls, movies and movie
// sessions.  Reads are public; writes need an ADMIN token.  Catalog reads
// except sessions are served through the Redis cache, and every
// successful write purges the namespaces whose responses embed the
// changed rows (movie lists show genre and actor names).
func RegisterCatalog(e *echo.Echo, d Deps, h Handlers) {
	guard := middleware.GuardWrites(middleware.JWTAuth(d.Tokens), model.RoleAdmin)
	cache := func(ns string) echo.MiddlewareFunc {
		return middleware.NewRedisCache(d.Cache, d.Redis, ns)
	}
	purge := func(ns ...string) echo.MiddlewareFunc {
		return middleware.InvalidateCache(d.Cache, d.Redis, d.Log, ns...)
	}

	mount(e.Group("/v1/genres", guard, purge("genres", "movies"), cache("genres")), h.Genres)
	mount(e.Group("/v1/actors", guard, purge("actors", "movies"), cache("actors")), h.Actors)
	mount(e.Group("/v1/cinema_halls", guard, purge("cinema_halls"), cache("cinema_halls")), h.Halls)
	mount(e.Group("/v1/movies", guard, purge("movies"), cache("movies")), h.Movies)
	// availability changes with every order, so sessions bypass the cache
	mount(e.Group("/v1/movie_sessions", guard), h.Sessions)
}
