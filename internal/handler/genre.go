package handler

import (
	"log/slog"
	"net/http"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// GenreHandler serves /genres.
type GenreHandler struct {
	Genres GenreStore
	Log    *slog.Logger
}

func NewGenreHandler(s GenreStore, log *slog.Logger) *GenreHandler {
	return &GenreHandler{Genres: s, Log: orDiscard(log)}
}

type genreReq struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	genres, err := h.Genres.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	out := make([]genreResp, 0, len(genres))
	for _, g := range genres {
		out = append(out, newGenreResp(g))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GenreHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	g, err := h.Genres.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newGenreResp(*g))
}

func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	var g model.Genre
	if err := copier.Copy(&g, &req); err != nil {
		return storeError(c, h.Log, err)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Genres.Create(ctx, &g); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, newGenreResp(g))
}

// Update replaces the genre (PUT).
func (h *GenreHandler) Update(c echo.Context) error { return h.save(c, false) }

// Patch changes only the fields present in the body.
func (h *GenreHandler) Patch(c echo.Context) error { return h.save(c, true) }

func (h *GenreHandler) save(c echo.Context, partial bool) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	var req genreReq
	if partial {
		cur, err := h.Genres.GetByID(ctx, id)
		if err != nil {
			return storeError(c, h.Log, err)
		}
		if err := copier.Copy(&req, cur); err != nil {
			return storeError(c, h.Log, err)
		}
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	g := model.Genre{ID: id}
	if err := copier.Copy(&g, &req); err != nil {
		return storeError(c, h.Log, err)
	}
	if err := h.Genres.Update(ctx, &g); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newGenreResp(g))
}

func (h *GenreHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Genres.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
