package handler

import (
	"log/slog"
	"net/http"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ActorHandler serves /actors.
type ActorHandler struct {
	Actors ActorStore
	Log    *slog.Logger
}

func NewActorHandler(s ActorStore, log *slog.Logger) *ActorHandler {
	return &ActorHandler{Actors: s, Log: orDiscard(log)}
}

type actorReq struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
}

func (h *ActorHandler) List(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	actors, err := h.Actors.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	out := make([]actorResp, 0, len(actors))
	for _, a := range actors {
		out = append(out, newActorResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ActorHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	a, err := h.Actors.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newActorResp(*a))
}

func (h *ActorHandler) Create(c echo.Context) error {
	var req actorReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	var a model.Actor
	if err := copier.Copy(&a, &req); err != nil {
		return storeError(c, h.Log, err)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Actors.Create(ctx, &a); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, newActorResp(a))
}

// Update replaces the actor (PUT).
func (h *ActorHandler) Update(c echo.Context) error { return h.save(c, false) }

// Patch changes only the fields present in the body.
func (h *ActorHandler) Patch(c echo.Context) error { return h.save(c, true) }

func (h *ActorHandler) save(c echo.Context, partial bool) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	var req actorReq
	if partial {
		cur, err := h.Actors.GetByID(ctx, id)
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
	a := model.Actor{ID: id}
	if err := copier.Copy(&a, &req); err != nil {
		return storeError(c, h.Log, err)
	}
	if err := h.Actors.Update(ctx, &a); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newActorResp(a))
}

func (h *ActorHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Actors.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
