package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ActorRepo manages persistence for actors.
type ActorRepo struct {
	db *sqlx.DB
}

// NewActorRepo constructs an ActorRepo with the given DB handle.
func NewActorRepo(db *sqlx.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

func (r *ActorRepo) List(ctx context.Context) ([]model.Actor, error) {
	out := []model.Actor{}
	if err := r.db.SelectContext(ctx, &out, `SELECT id, first_name, last_name FROM actors ORDER BY id`); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	if err := getOne(ctx, r.db, &a, `SELECT id, first_name, last_name FROM actors WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	id, err := insert(ctx, r.db, `INSERT INTO actors (first_name, last_name) VALUES (?, ?)`, a.FirstName, a.LastName)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *ActorRepo) Update(ctx context.Context, a *model.Actor) error {
	return execOne(ctx, r.db, `UPDATE actors SET first_name = ?, last_name = ? WHERE id = ?`, a.FirstName, a.LastName, a.ID)
}

func (r *ActorRepo) Delete(ctx context.Context, id uint64) error {
	return execOne(ctx, r.db, `DELETE FROM actors WHERE id = ?`, id)
}
