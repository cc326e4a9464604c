package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// GenreRepo manages persistence for genres.
type GenreRepo struct {
	db *sqlx.DB
}

// NewGenreRepo constructs a GenreRepo with the given DB handle.
func NewGenreRepo(db *sqlx.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// List returns every genre ordered by id.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	out := []model.Genre{}
	if err := r.db.SelectContext(ctx, &out, `SELECT id, name FROM genres ORDER BY id`); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrNotFound when the genre does not exist.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	var g model.Genre
	if err := getOne(ctx, r.db, &g, `SELECT id, name FROM genres WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts g and sets its ID.  A taken name yields ErrDuplicate.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	id, err := insert(ctx, r.db, `INSERT INTO genres (name) VALUES (?)`, g.Name)
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

// Update overwrites the genre's name.
func (r *GenreRepo) Update(ctx context.Context, g *model.Genre) error {
	return execOne(ctx, r.db, `UPDATE genres SET name = ? WHERE id = ?`, g.Name, g.ID)
}

// Delete removes the genre; movie links are dropped by the foreign key.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) error {
	return execOne(ctx, r.db, `DELETE FROM genres WHERE id = ?`, id)
}
