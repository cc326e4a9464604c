package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// insert runs an INSERT and returns the auto-incremented id.
func insert(ctx context.Context, ex sqlx.ExecerContext, q string, args ...any) (uint64, error) {
	res, err := ex.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// execOne runs an UPDATE or DELETE aimed at a single row and reports
// ErrNotFound when no row matched.  The connection is opened with
// clientFoundRows, so an UPDATE that leaves values unchanged still counts
// as a match.
func execOne(ctx context.Context, ex sqlx.ExecerContext, q string, args ...any) error {
	res, err := ex.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// getOne wraps GetContext, mapping sql.ErrNoRows to ErrNotFound.
func getOne(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// rollback is deferred by transactional methods; it is a no-op once the
// transaction has been committed.
func rollback(tx *sqlx.Tx) {
	_ = tx.Rollback()
}
