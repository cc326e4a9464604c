package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/query"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// MovieHandler serves /movies.  Lists, details and writes use different
// representations.
type MovieHandler struct {
	Movies MovieStore
	Log    *slog.Logger
}

func NewMovieHandler(s MovieStore, log *slog.Logger) *MovieHandler {
	return &MovieHandler{Movies: s, Log: orDiscard(log)}
}

type movieReq struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Duration    uint32   `json:"duration" validate:"required,min=1"`
	Genres      []uint64 `json:"genres" validate:"required,min=1,dive,gt=0"`
	Actors      []uint64 `json:"actors" validate:"required,min=1,dive,gt=0"`
}

func (r movieReq) input() repository.MovieInput {
	return repository.MovieInput{
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.Duration,
		GenreIDs:    dedupe(r.Genres),
		ActorIDs:    dedupe(r.Actors),
	}
}

// List supports ?actors=1,2 ?genres=3 and ?title=sub.  Id lists match any
// listed id; filters combine with AND.
func (h *MovieHandler) List(c echo.Context) error {
	var f repository.MovieFilter
	var err error
	if f.ActorIDs, err = query.ParseIDList(c.QueryParam("actors")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actors: " + err.Error()})
	}
	if f.GenreIDs, err = query.ParseIDList(c.QueryParam("genres")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "genres: " + err.Error()})
	}
	f.Title = c.QueryParam("title")

	ctx, cancel := dbContext(c)
	defer cancel()
	movies, err := h.Movies.List(ctx, f)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	out := make([]movieListResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, newMovieListResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newMovieDetailResp(*m))
}

func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	m, err := h.Movies.Create(ctx, req.input())
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, newMovieWriteResp(*m))
}

func (h *MovieHandler) Update(c echo.Context) error { return h.save(c, false) }

func (h *MovieHandler) Patch(c echo.Context) error { return h.save(c, true) }

func (h *MovieHandler) save(c echo.Context, partial bool) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	var req movieReq
	if partial {
		cur, err := h.Movies.GetByID(ctx, id)
		if err != nil {
			return storeError(c, h.Log, err)
		}
		req = movieReq{
			Title:       cur.Title,
			Description: cur.Description,
			Duration:    cur.Duration,
			Genres:      genreIDs(cur.Genres),
			Actors:      actorIDs(cur.Actors),
		}
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m, err := h.Movies.Update(ctx, id, req.input())
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newMovieWriteResp(*m))
}

func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Movies.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func dedupe(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
