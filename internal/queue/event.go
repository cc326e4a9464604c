// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
    "time"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// OrderCreatedQueue is the durable queue order events are published to.
const OrderCreatedQueue = "order.created"

// OrderCreatedEvent is published after an order commits.  It carries enough
// information for downstream consumers to log, notify or trigger analytics
// without querying the primary database.
type OrderCreatedEvent struct {
    OrderID   uint64        `json:"order_id"`
    UserID    uint64        `json:"user_id"`
    CreatedAt string        `json:"created_at"`
    Tickets   []TicketEntry `json:"tickets"`
}

// TicketEntry is one sold seat in an OrderCreatedEvent.
type TicketEntry struct {
    MovieSessionID uint64 `json:"movie_session_id"`
    MovieTitle     string `json:"movie_title"`
    HallName       string `json:"hall_name"`
    ShowTime       string `json:"show_time"`
    Row            uint32 `json:"row"`
    Seat           uint32 `json:"seat"`
}

// NewOrderCreatedEvent builds the event for a stored order whose tickets
// have their sessions loaded.
func NewOrderCreatedEvent(o model.Order) OrderCreatedEvent {
    ev := OrderCreatedEvent{
        OrderID:   o.ID,
        UserID:    o.UserID,
        CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
        Tickets:   make([]TicketEntry, 0, len(o.Tickets)),
    }
    for _, t := range o.Tickets {
        ev.Tickets = append(ev.Tickets, TicketEntry{
            MovieSessionID: t.MovieSessionID,
            MovieTitle:     t.Session.MovieTitle,
            HallName:       t.Session.HallName,
            ShowTime:       t.Session.ShowTime.UTC().Format(time.RFC3339),
            Row:            t.Row,
            Seat:           t.Seat,
        })
    }
    return ev
}
