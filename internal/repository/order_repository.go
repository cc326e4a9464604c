package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// TicketInput is one requested seat of a new order.
type TicketInput struct {
	MovieSessionID uint64
	Row            uint32
	Seat           uint32
}

// OrderRepo manages orders and their tickets.  Reads are always scoped to
// the owning user.
type OrderRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewOrderRepo constructs an OrderRepo with the given DB handle.
func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db, now: time.Now}
}

// ListByUser returns one page of the user's orders, newest first, together
// with the total number of orders the user owns.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Order, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID); err != nil {
		return nil, 0, err
	}
	orders := []model.Order{}
	if total == 0 || offset >= total {
		return orders, total, nil
	}
	err := r.db.SelectContext(ctx, &orders,
		`SELECT id, user_id, created_at FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachTickets(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetByIDForUser returns the order only when userID owns it; foreign
// orders are reported as ErrNotFound.
func (r *OrderRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Order, error) {
	orders := make([]model.Order, 1)
	err := getOne(ctx, r.db, &orders[0],
		`SELECT id, user_id, created_at FROM orders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, err
	}
	if err := r.attachTickets(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

type sessionBounds struct {
	ID         uint64 `db:"id"`
	Rows       uint32 `db:"rows"`
	SeatsInRow uint32 `db:"seats_in_row"`
}

type placeKey struct {
	session uint64
	row     uint32
	seat    uint32
}

// Create stores an order owned by userID with the given tickets in one
// transaction.  Per-ticket failures are returned as *TicketError wrapping
// ErrInvalidReference, ErrSeatOutOfRange or ErrSeatTaken; nothing is
// written in that case.
func (r *OrderRepo) Create(ctx context.Context, userID uint64, tickets []TicketInput) (*model.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	bounds, err := loadSessionBounds(ctx, tx, tickets)
	if err != nil {
		return nil, err
	}
	seen := make(map[placeKey]struct{}, len(tickets))
	for i, t := range tickets {
		b, ok := bounds[t.MovieSessionID]
		if !ok {
			return nil, &TicketError{Index: i, Field: "movie_session", Err: ErrInvalidReference}
		}
		if t.Row < 1 || t.Row > b.Rows {
			return nil, &TicketError{Index: i, Field: "row", Err: ErrSeatOutOfRange}
		}
		if t.Seat < 1 || t.Seat > b.SeatsInRow {
			return nil, &TicketError{Index: i, Field: "seat", Err: ErrSeatOutOfRange}
		}
		k := placeKey{t.MovieSessionID, t.Row, t.Seat}
		if _, dup := seen[k]; dup {
			return nil, &TicketError{Index: i, Field: "seat", Err: ErrSeatTaken}
		}
		seen[k] = struct{}{}
	}

	created := r.now().UTC().Truncate(time.Second)
	orderID, err := insert(ctx, tx, `INSERT INTO orders (created_at, user_id) VALUES (?, ?)`, created, userID)
	if err != nil {
		return nil, err
	}
	for i, t := range tickets {
		_, err := insert(ctx, tx, "INSERT INTO tickets (movie_session_id, order_id, `row`, seat) VALUES (?, ?, ?, ?)",
			t.MovieSessionID, orderID, t.Row, t.Seat)
		if errors.Is(err, ErrDuplicate) {
			return nil, &TicketError{Index: i, Field: "seat", Err: ErrSeatTaken}
		}
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByIDForUser(ctx, orderID, userID)
}

func loadSessionBounds(ctx context.Context, tx *sqlx.Tx, tickets []TicketInput) (map[uint64]sessionBounds, error) {
	out := map[uint64]sessionBounds{}
	if len(tickets) == 0 {
		return out, nil
	}
	ids := make([]uint64, 0, len(tickets))
	for _, t := range tickets {
		if !slices.Contains(ids, t.MovieSessionID) {
			ids = append(ids, t.MovieSessionID)
		}
	}
	q, args, err := sqlx.In("SELECT ms.id, h.`rows`, h.seats_in_row FROM movie_sessions ms "+
		"JOIN cinema_halls h ON h.id = ms.cinema_hall_id WHERE ms.id IN (?) LOCK IN SHARE MODE", ids)
	if err != nil {
		return nil, err
	}
	var rows []sessionBounds
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, b := range rows {
		out[b.ID] = b
	}
	return out, nil
}

type ticketRow struct {
	ID             uint64    `db:"id"`
	OrderID        uint64    `db:"order_id"`
	MovieSessionID uint64    `db:"movie_session_id"`
	Row            uint32    `db:"row"`
	Seat           uint32    `db:"seat"`
	ShowTime       time.Time `db:"show_time"`
	MovieID        uint64    `db:"movie_id"`
	CinemaHallID   uint64    `db:"cinema_hall_id"`
	MovieTitle     string    `db:"movie_title"`
	HallName       string    `db:"hall_name"`
	HallRows       uint32    `db:"hall_rows"`
	HallSeatsInRow uint32    `db:"hall_seats_in_row"`
}

func (t ticketRow) ticket() model.Ticket {
	return model.Ticket{
		ID:             t.ID,
		OrderID:        t.OrderID,
		MovieSessionID: t.MovieSessionID,
		Row:            t.Row,
		Seat:           t.Seat,
		Session: model.MovieSession{
			ID:             t.MovieSessionID,
			ShowTime:       t.ShowTime,
			MovieID:        t.MovieID,
			CinemaHallID:   t.CinemaHallID,
			MovieTitle:     t.MovieTitle,
			HallName:       t.HallName,
			HallRows:       t.HallRows,
			HallSeatsInRow: t.HallSeatsInRow,
		},
	}
}

// attachTickets loads the tickets of all orders, with session, movie and
// hall joined, in a single query.
func (r *OrderRepo) attachTickets(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uint64, len(orders))
	pos := make(map[uint64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		pos[orders[i].ID] = i
		orders[i].Tickets = []model.Ticket{}
	}
	q, args, err := sqlx.In(`SELECT t.id, t.order_id, t.movie_session_id, t.`+"`row`"+`, t.seat,
		ms.show_time, ms.movie_id, ms.cinema_hall_id,
		m.title AS movie_title, h.name AS hall_name,
		h.`+"`rows`"+` AS hall_rows, h.seats_in_row AS hall_seats_in_row
	FROM tickets t
	JOIN movie_sessions ms ON ms.id = t.movie_session_id
	JOIN movies m ON m.id = ms.movie_id
	JOIN cinema_halls h ON h.id = ms.cinema_hall_id
	WHERE t.order_id IN (?)
	ORDER BY t.id`, ids)
	if err != nil {
		return err
	}
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, t := range rows {
		i := pos[t.OrderID]
		orders[i].Tickets = append(orders[i].Tickets, t.ticket())
	}
	return nil
}
