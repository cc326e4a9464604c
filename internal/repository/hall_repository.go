package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// HallRepo manages persistence for cinema halls.  `rows` is a reserved
// word in MySQL 8 and is always quoted.
type HallRepo struct {
	db *sqlx.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sqlx.DB) *HallRepo {
	return &HallRepo{db: db}
}

const hallColumns = "id, name, `rows`, seats_in_row"

// List returns every hall ordered by id.
func (r *HallRepo) List(ctx context.Context) ([]model.CinemaHall, error) {
	out := []model.CinemaHall{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+hallColumns+` FROM cinema_halls ORDER BY id`); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrNotFound when the hall does not exist.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.CinemaHall, error) {
	var h model.CinemaHall
	if err := getOne(ctx, r.db, &h, `SELECT `+hallColumns+` FROM cinema_halls WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &h, nil
}

// Create inserts h and sets its ID.
func (r *HallRepo) Create(ctx context.Context, h *model.CinemaHall) error {
	id, err := insert(ctx, r.db, "INSERT INTO cinema_halls (name, `rows`, seats_in_row) VALUES (?, ?, ?)", h.Name, h.Rows, h.SeatsInRow)
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

// Update overwrites every column of the hall.  The hall row is locked
// first, then a grid that can no longer hold the tickets sold for its
// sessions is refused with ErrSeatsSold.
func (r *HallRepo) Update(ctx context.Context, h *model.CinemaHall) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	var id uint64
	if err := getOne(ctx, tx, &id, `SELECT id FROM cinema_halls WHERE id = ? FOR UPDATE`, h.ID); err != nil {
		return err
	}
	sold, err := soldExtent(ctx, tx,
		`JOIN movie_sessions ms ON ms.id = t.movie_session_id WHERE ms.cinema_hall_id = ?`, h.ID)
	if err != nil {
		return err
	}
	if !sold.fits(h.Rows, h.SeatsInRow) {
		return ErrSeatsSold
	}
	err = execOne(ctx, tx, "UPDATE cinema_halls SET name = ?, `rows` = ?, seats_in_row = ? WHERE id = ?", h.Name, h.Rows, h.SeatsInRow, h.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the hall.  Halls with sessions yield ErrConflict.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	return execOne(ctx, r.db, `DELETE FROM cinema_halls WHERE id = ?`, id)
}

// seatExtent is the highest row and seat among sold tickets.  Zero means
// nothing is sold.
type seatExtent struct {
	MaxRow  uint32 `db:"max_row"`
	MaxSeat uint32 `db:"max_seat"`
}

func (e seatExtent) fits(rows, seatsInRow uint32) bool {
	return e.MaxRow <= rows && e.MaxSeat <= seatsInRow
}

// soldExtent aggregates the tickets selected by clause, which may join
// movie_sessions as ms and must filter tickets aliased as t.
func soldExtent(ctx context.Context, tx *sqlx.Tx, clause string, args ...any) (seatExtent, error) {
	var e seatExtent
	err := tx.GetContext(ctx, &e,
		"SELECT COALESCE(MAX(t.`row`), 0) AS max_row, COALESCE(MAX(t.seat), 0) AS max_seat FROM tickets t "+clause, args...)
	return e, err
}
