package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const userColumns = "id, email, password_hash, role, is_active, created_at, updated_at"

// UserRepo stores accounts of the identity provider.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user with an already hashed password and returns its ID.
// A taken email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
	return insert(ctx, r.db,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		NormalizeEmail(email), passwordHash, role)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := getOne(ctx, r.db, &u, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email)); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := getOne(ctx, r.db, &u, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id); err != nil {
		return nil, err
	}
	return &u, nil
}
