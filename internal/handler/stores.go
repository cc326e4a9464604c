package handler

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// The interfaces below are satisfied by the repository types; handlers
// depend on them so they can be exercised with in-memory fakes.

type GenreStore interface {
	List(ctx context.Context) ([]model.Genre, error)
	GetByID(ctx context.Context, id uint64) (*model.Genre, error)
	Create(ctx context.Context, g *model.Genre) error
	Update(ctx context.Context, g *model.Genre) error
	Delete(ctx context.Context, id uint64) error
}

type ActorStore interface {
	List(ctx context.Context) ([]model.Actor, error)
	GetByID(ctx context.Context, id uint64) (*model.Actor, error)
	Create(ctx context.Context, a *model.Actor) error
	Update(ctx context.Context, a *model.Actor) error
	Delete(ctx context.Context, id uint64) error
}

type HallStore interface {
	List(ctx context.Context) ([]model.CinemaHall, error)
	GetByID(ctx context.Context, id uint64) (*model.CinemaHall, error)
	Create(ctx context.Context, h *model.CinemaHall) error
	Update(ctx context.Context, h *model.CinemaHall) error
	Delete(ctx context.Context, id uint64) error
}

type MovieStore interface {
	List(ctx context.Context, f repository.MovieFilter) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	Create(ctx context.Context, in repository.MovieInput) (*model.Movie, error)
	Update(ctx context.Context, id uint64, in repository.MovieInput) (*model.Movie, error)
	Delete(ctx context.Context, id uint64) error
}

type SessionStore interface {
	List(ctx context.Context, f repository.SessionFilter) ([]model.MovieSession, error)
	GetByID(ctx context.Context, id uint64) (*model.MovieSession, error)
	TakenPlaces(ctx context.Context, id uint64) ([]model.Place, error)
	Create(ctx context.Context, in repository.SessionInput) (*model.MovieSession, error)
	Update(ctx context.Context, id uint64, in repository.SessionInput) (*model.MovieSession, error)
	Delete(ctx context.Context, id uint64) error
}

type OrderStore interface {
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Order, int, error)
	GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Order, error)
	Create(ctx context.Context, userID uint64, tickets []repository.TicketInput) (*model.Order, error)
}

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

var (
	_ GenreStore   = (*repository.GenreRepo)(nil)
	_ ActorStore   = (*repository.ActorRepo)(nil)
	_ HallStore    = (*repository.HallRepo)(nil)
	_ MovieStore   = (*repository.MovieRepo)(nil)
	_ SessionStore = (*repository.SessionRepo)(nil)
	_ OrderStore   = (*repository.OrderRepo)(nil)
	_ UserStore    = (*repository.UserRepo)(nil)
)
