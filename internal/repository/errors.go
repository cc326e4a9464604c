// Package repository contains the data access layer.  This file defines
// error values shared by every repository so handlers can tell failure
// scenarios apart: ErrNotFound becomes 404, ErrDuplicate / ErrConflict /
// ErrSeatTaken become 409 and ErrInvalidReference / ErrSeatOutOfRange are
// reported as validation errors on the offending field.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist, or is not
// visible to the caller.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a unique key.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when a row cannot be deleted because other rows
// still reference it (e.g. a hall with scheduled sessions).
var ErrConflict = errors.New("conflict")

// ErrSeatsSold is returned when an edit would leave sold tickets outside
// the seat grid of a hall.  It wraps ErrConflict.
var ErrSeatsSold = fmt.Errorf("%w: sold tickets fall outside the seat grid", ErrConflict)

// ErrInvalidReference is returned when a write points at a row that does
// not exist (unknown genre, actor, movie, hall or session id).
var ErrInvalidReference = errors.New("invalid reference")

// ErrSeatTaken is returned when a ticket targets a seat that is already
// sold for the session.
var ErrSeatTaken = errors.New("seat already taken")

// ErrSeatOutOfRange is returned when a ticket's row or seat lies outside
// the hall grid.
var ErrSeatOutOfRange = errors.New("seat out of range")

// TicketError ties a ticket failure to its position in the order payload.
type TicketError struct {
	Index int    // position of the ticket in the request
	Field string // "row", "seat" or "movie_session"
	Err   error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("ticket %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *TicketError) Unwrap() error { return e.Err }

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// translate maps driver errors onto the sentinel values above and leaves
// everything else untouched.
func translate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDuplicateEntry:
		return fmt.Errorf("%w: %s", ErrDuplicate, me.Message)
	case mysqlRowIsReferenced:
		return fmt.Errorf("%w: %s", ErrConflict, me.Message)
	case mysqlNoReferencedRow:
		return fmt.Errorf("%w: %s", ErrInvalidReference, me.Message)
	}
	return err
}

// FieldError reports ids of a write payload field that reference rows
// which do not exist.
type FieldError struct {
	Field string   // payload field, e.g. "genres" or "cinema_hall"
	IDs   []uint64 // offending ids
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Field, e.IDs, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
