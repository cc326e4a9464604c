package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/query"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// OrderEvents publishes order events.  Publishing is best-effort.
type OrderEvents interface {
	PublishOrderCreated(ctx context.Context, ev queue.OrderCreatedEvent) error
}

// OrderHandler serves /orders.  Every operation is scoped to the caller:
// lists and lookups only see the caller's orders and new orders are always
// owned by the caller, whatever the body says.
type OrderHandler struct {
	Orders OrderStore
	Events OrderEvents // nil disables publishing
	Log    *slog.Logger

	publishing sync.WaitGroup
}

func NewOrderHandler(s OrderStore, events OrderEvents, log *slog.Logger) *OrderHandler {
	return &OrderHandler{Orders: s, Events: events, Log: orDiscard(log)}
}

type ticketReq struct {
	Row          uint32 `json:"row" validate:"required,min=1"`
	Seat         uint32 `json:"seat" validate:"required,min=1"`
	MovieSession uint64 `json:"movie_session" validate:"required"`
}

type orderReq struct {
	Tickets []ticketReq `json:"tickets" validate:"required,min=1,max=100,dive"`
}

// List returns a page of the caller's orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pp, err := query.OrderPager.Params(c.QueryParam("page"), c.QueryParam(query.OrderPager.SizeParam))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid page"})
	}

	ctx, cancel := dbContext(c)
	defer cancel()
	orders, total, err := h.Orders.ListByUser(ctx, uid, pp.Limit(), pp.Offset())
	if err != nil {
		return storeError(c, h.Log, err)
	}
	if err := pp.Check(total); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid page"})
	}

	resp := pageResp[orderResp]{Count: total, Results: make([]orderResp, 0, len(orders))}
	resp.Next, resp.Previous = pp.Links(requestURL(c), total)
	for _, o := range orders {
		resp.Results = append(resp.Results, newOrderResp(o))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns one of the caller's orders; foreign orders are 404.
func (h *OrderHandler) Get(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	o, err := h.Orders.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newOrderResp(*o))
}

// Create books the requested seats for the caller in one transaction.
func (h *OrderHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req orderReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	tickets, errs := req.tickets()
	if errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx, cancel := dbContext(c)
	defer cancel()
	o, err := h.Orders.Create(ctx, uid, tickets)
	if err != nil {
		var te *repository.TicketError
		if errors.As(err, &te) {
			h.Log.InfoContext(ctx, "order rejected", slog.Uint64("user_id", uid), slog.String("reason", te.Error()))
		}
		return storeError(c, h.Log, err)
	}
	h.publish(*o)
	return c.JSON(http.StatusCreated, newOrderResp(*o))
}

// tickets converts the payload, rejecting a seat listed twice.
func (r orderReq) tickets() ([]repository.TicketInput, map[string]string) {
	type place struct {
		session   uint64
		row, seat uint32
	}
	seen := make(map[place]int, len(r.Tickets))
	out := make([]repository.TicketInput, 0, len(r.Tickets))
	for i, t := range r.Tickets {
		p := place{t.MovieSession, t.Row, t.Seat}
		if _, dup := seen[p]; dup {
			return nil, map[string]string{
				ticketField(i, "seat"): "This seat is listed more than once.",
			}
		}
		seen[p] = i
		out = append(out, repository.TicketInput{MovieSessionID: t.MovieSession, Row: t.Row, Seat: t.Seat})
	}
	return out, nil
}

func (h *OrderHandler) publish(o model.Order) {
	if h.Events == nil {
		return
	}
	ev := queue.NewOrderCreatedEvent(o)
	h.publishing.Add(1)
	go func() {
		defer h.publishing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Events.PublishOrderCreated(ctx, ev); err != nil {
			h.Log.Warn("publish order.created failed", slog.Uint64("order_id", ev.OrderID), slog.Any("err", err))
		}
	}()
}

// WaitPublished blocks until every order event handed to the broker has
// been sent or has failed, or until ctx ends.  The server calls it after
// the HTTP listener has drained.
func (h *OrderHandler) WaitPublished(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.publishing.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// requestURL reconstructs the absolute URL of the current request.
func requestURL(c echo.Context) *url.URL {
	r := c.Request()
	u := *r.URL
	u.Scheme = c.Scheme()
	u.Host = r.Host
	return &u
}
