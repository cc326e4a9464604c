package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/query"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// MovieReader loads the movie shown in a session detail.
type MovieReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}

// SessionHandler serves /movie_sessions.  Sessions are never cached:
// tickets_sold and tickets_available are computed on every read.
type SessionHandler struct {
	Sessions SessionStore
	Movies   MovieReader
	Log      *slog.Logger
}

func NewSessionHandler(s SessionStore, m MovieReader, log *slog.Logger) *SessionHandler {
	return &SessionHandler{Sessions: s, Movies: m, Log: orDiscard(log)}
}

type sessionReq struct {
	ShowTime   time.Time `json:"show_time" validate:"required"`
	Movie      uint64    `json:"movie" validate:"required"`
	CinemaHall uint64    `json:"cinema_hall" validate:"required"`
}

func (r sessionReq) input() repository.SessionInput {
	return repository.SessionInput{ShowTime: r.ShowTime.UTC(), MovieID: r.Movie, CinemaHallID: r.CinemaHall}
}

// List supports ?date=YYYY-MM-DD and ?movie=<id>.
func (h *SessionHandler) List(c echo.Context) error {
	var f repository.SessionFilter
	if raw := c.QueryParam("date"); raw != "" {
		d, err := query.ParseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date: " + err.Error()})
		}
		f.Date = &d
	}
	if raw := c.QueryParam("movie"); raw != "" {
		id, err := query.ParseID(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie: " + err.Error()})
		}
		f.MovieID = &id
	}

	ctx, cancel := dbContext(c)
	defer cancel()
	sessions, err := h.Sessions.List(ctx, f)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	out := make([]sessionListResp, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSessionListResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns the session with its movie, hall and sold seats.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	s, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	m, err := h.Movies.GetByID(ctx, s.MovieID)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	taken, err := h.Sessions.TakenPlaces(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newSessionDetailResp(*s, *m, taken))
}

func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	s, err := h.Sessions.Create(ctx, req.input())
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, newSessionWriteResp(*s))
}

func (h *SessionHandler) Update(c echo.Context) error { return h.save(c, false) }

func (h *SessionHandler) Patch(c echo.Context) error { return h.save(c, true) }

func (h *SessionHandler) save(c echo.Context, partial bool) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	var req sessionReq
	if partial {
		cur, err := h.Sessions.GetByID(ctx, id)
		if err != nil {
			return storeError(c, h.Log, err)
		}
		req = sessionReq{ShowTime: cur.ShowTime, Movie: cur.MovieID, CinemaHall: cur.CinemaHallID}
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.Sessions.Update(ctx, id, req.input())
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newSessionWriteResp(*s))
}

// Delete refuses sessions that already sold tickets (409).
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Sessions.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
