package handler

import (
	"log/slog"
	"net/http"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// HallHandler serves /cinema_halls.
type HallHandler struct {
	Halls HallStore
	Log   *slog.Logger
}

func NewHallHandler(s HallStore, log *slog.Logger) *HallHandler {
	return &HallHandler{Halls: s, Log: orDiscard(log)}
}

type hallReq struct {
	Name       string `json:"name" validate:"required,max=255"`
	Rows       uint32 `json:"rows" validate:"required,min=1,max=1000"`
	SeatsInRow uint32 `json:"seats_in_row" validate:"required,min=1,max=1000"`
}

func (h *HallHandler) List(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	halls, err := h.Halls.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	out := make([]hallResp, 0, len(halls))
	for _, hl := range halls {
		out = append(out, newHallResp(hl))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HallHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	hl, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newHallResp(*hl))
}

func (h *HallHandler) Create(c echo.Context) error {
	var req hallReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	var hl model.CinemaHall
	if err := copier.Copy(&hl, &req); err != nil {
		return storeError(c, h.Log, err)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Halls.Create(ctx, &hl); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, newHallResp(hl))
}

// Update replaces the hall (PUT).
func (h *HallHandler) Update(c echo.Context) error { return h.save(c, false) }

func (h *HallHandler) Patch(c echo.Context) error { return h.save(c, true) }

func (h *HallHandler) save(c echo.Context, partial bool) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	var req hallReq
	if partial {
		cur, err := h.Halls.GetByID(ctx, id)
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
	hl := model.CinemaHall{ID: id}
	if err := copier.Copy(&hl, &req); err != nil {
		return storeError(c, h.Log, err)
	}
	if err := h.Halls.Update(ctx, &hl); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newHallResp(hl))
}

func (h *HallHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Halls.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
