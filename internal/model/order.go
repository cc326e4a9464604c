package model

import "time"

// Order groups the tickets a user bought in one booking.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who placed the order.
//  CreatedAt – creation timestamp.
//  Tickets   – tickets sold under the order.
type Order struct {
    ID        uint64    `db:"id"`         // orders.id
    UserID    uint64    `db:"user_id"`    // orders.user_id
    CreatedAt time.Time `db:"created_at"` // orders.created_at
    Tickets   []Ticket  `db:"-"`
}

// Ticket is one sold seat of a session.  (MovieSessionID, Row, Seat) is
// unique in storage.  Session holds the joined session data when the
// ticket is loaded for display.
type Ticket struct {
    ID             uint64       `db:"id"`               // tickets.id
    OrderID        uint64       `db:"order_id"`         // tickets.order_id
    MovieSessionID uint64       `db:"movie_session_id"` // tickets.movie_session_id
    Row            uint32       `db:"row"`              // tickets.row
    Seat           uint32       `db:"seat"`             // tickets.seat
    Session        MovieSession `db:"-"`
}
