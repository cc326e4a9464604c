package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// SessionFilter narrows a session listing.  Nil fields impose no
// constraint.
type SessionFilter struct {
	Date    *time.Time // calendar day (UTC) of show_time
	MovieID *uint64
}

// SessionInput is the writable part of a movie session.
type SessionInput struct {
	ShowTime     time.Time
	MovieID      uint64
	CinemaHallID uint64
}

// SessionRepo manages movie sessions.  Every read computes tickets_sold at
// query time so availability always reflects committed orders.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

const sessionSelect = `SELECT ms.id, ms.show_time, ms.movie_id, ms.cinema_hall_id,
	m.title AS movie_title, h.name AS hall_name,
	h.` + "`rows`" + ` AS hall_rows, h.seats_in_row AS hall_seats_in_row,
	COUNT(t.id) AS tickets_sold
FROM movie_sessions ms
JOIN movies m ON m.id = ms.movie_id
JOIN cinema_halls h ON h.id = ms.cinema_hall_id
LEFT JOIN tickets t ON t.movie_session_id = ms.id`

const sessionGroupBy = ` GROUP BY ms.id, ms.show_time, ms.movie_id, ms.cinema_hall_id,
	m.title, h.name, h.` + "`rows`" + `, h.seats_in_row`

// List returns the sessions matching f ordered by show time.
func (r *SessionRepo) List(ctx context.Context, f SessionFilter) ([]model.MovieSession, error) {
	var where []string
	var args []any
	if f.Date != nil {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		where = append(where, `ms.show_time >= ? AND ms.show_time < ?`)
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	if f.MovieID != nil {
		where = append(where, `ms.movie_id = ?`)
		args = append(args, *f.MovieID)
	}

	q := sessionSelect
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += sessionGroupBy + ` ORDER BY ms.show_time, ms.id`

	sessions := []model.MovieSession{}
	if err := r.db.SelectContext(ctx, &sessions, q, args...); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByID returns one annotated session.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.MovieSession, error) {
	var s model.MovieSession
	if err := getOne(ctx, r.db, &s, sessionSelect+` WHERE ms.id = ?`+sessionGroupBy, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// TakenPlaces lists the seats already sold for the session.
func (r *SessionRepo) TakenPlaces(ctx context.Context, id uint64) ([]model.Place, error) {
	places := []model.Place{}
	err := r.db.SelectContext(ctx, &places,
		"SELECT `row`, seat FROM tickets WHERE movie_session_id = ? ORDER BY `row`, seat", id)
	if err != nil {
		return nil, err
	}
	return places, nil
}

// Create schedules a session.  Unknown movie or hall ids are reported as a
// *FieldError.
func (r *SessionRepo) Create(ctx context.Context, in SessionInput) (*model.MovieSession, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	if err := checkSessionRefs(ctx, tx, in); err != nil {
		return nil, err
	}
	id, err := insert(ctx, tx, `INSERT INTO movie_sessions (show_time, movie_id, cinema_hall_id) VALUES (?, ?, ?)`,
		in.ShowTime.UTC(), in.MovieID, in.CinemaHallID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update overwrites the session columns.  Moving a session with sold
// tickets to a hall whose grid cannot hold them yields ErrSeatsSold.
func (r *SessionRepo) Update(ctx context.Context, id uint64, in SessionInput) (*model.MovieSession, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	if err := checkSessionRefs(ctx, tx, in); err != nil {
		return nil, err
	}
	var hall model.CinemaHall
	if err := getOne(ctx, tx, &hall, `SELECT `+hallColumns+` FROM cinema_halls WHERE id = ? LOCK IN SHARE MODE`, in.CinemaHallID); err != nil {
		return nil, err
	}
	sold, err := soldExtent(ctx, tx, `WHERE t.movie_session_id = ?`, id)
	if err != nil {
		return nil, err
	}
	if !sold.fits(hall.Rows, hall.SeatsInRow) {
		return nil, ErrSeatsSold
	}
	err = execOne(ctx, tx, `UPDATE movie_sessions SET show_time = ?, movie_id = ?, cinema_hall_id = ? WHERE id = ?`,
		in.ShowTime.UTC(), in.MovieID, in.CinemaHallID, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the session.  Sessions with sold tickets yield
// ErrConflict.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	return execOne(ctx, r.db, `DELETE FROM movie_sessions WHERE id = ?`, id)
}

func checkSessionRefs(ctx context.Context, tx *sqlx.Tx, in SessionInput) error {
	if err := checkIDs(ctx, tx, "movie", "movies", []uint64{in.MovieID}); err != nil {
		return err
	}
	return checkIDs(ctx, tx, "cinema_hall", "cinema_halls", []uint64{in.CinemaHallID})
}
