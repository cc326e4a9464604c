package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

var sessionCols = []string{"id", "show_time", "movie_id", "cinema_hall_id",
	"movie_title", "hall_name", "hall_rows", "hall_seats_in_row", "tickets_sold"}

func TestSessionRepoListFilters(t *testing.T) {
	db, mock := newMock(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	show := day.Add(18 * time.Hour)
	movie := uint64(7)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ms.show_time >= ? AND ms.show_time < ? AND ms.movie_id = ? GROUP BY")).
		WithArgs(day, day.AddDate(0, 0, 1), 7).
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(1, show, 7, 2, "Heat", "Blue", 10, 8, 3))

	got, err := NewSessionRepo(db).List(context.Background(), SessionFilter{Date: &day, MovieID: &movie})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].TicketsSold)
	assert.Equal(t, 77, got[0].TicketsAvailable())
	assert.Equal(t, "Heat", got[0].MovieTitle)
}

func TestSessionRepoListUnfiltered(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN tickets t ON t.movie_session_id = ms.id GROUP BY")).
		WillReturnRows(sqlmock.NewRows(sessionCols))

	got, err := NewSessionRepo(db).List(context.Background(), SessionFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSessionRepoTakenPlaces(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM tickets WHERE movie_session_id").WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"row", "seat"}).AddRow(1, 2).AddRow(3, 4))

	got, err := NewSessionRepo(db).TakenPlaces(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []model.Place{{Row: 1, Seat: 2}, {Row: 3, Seat: 4}}, got)
}

func TestSessionRepoCreateUnknownHall(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM movies WHERE id IN").WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT id FROM cinema_halls WHERE id IN").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := NewSessionRepo(db).Create(context.Background(), SessionInput{
		ShowTime: time.Now(), MovieID: 7, CinemaHallID: 5,
	})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "cinema_hall", fe.Field)
}

func expectSessionRefs(mock sqlmock.Sqlmock, movieID, hallID uint64, rows, seats uint32) {
	mock.ExpectQuery("SELECT id FROM movies WHERE id IN").WithArgs(movieID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(movieID))
	mock.ExpectQuery("SELECT id FROM cinema_halls WHERE id IN").WithArgs(hallID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(hallID))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cinema_halls WHERE id = ? LOCK IN SHARE MODE")).WithArgs(hallID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "rows", "seats_in_row"}).AddRow(hallID, "Hall", rows, seats))
}

func TestSessionRepoUpdateToSmallerHallConflicts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	expectSessionRefs(mock, 7, 5, 1, 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets t WHERE t.movie_session_id = ?")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"max_row", "max_seat"}).AddRow(2, 3))
	mock.ExpectRollback()

	_, err := NewSessionRepo(db).Update(context.Background(), 4, SessionInput{
		ShowTime: time.Now(), MovieID: 7, CinemaHallID: 5,
	})
	assert.ErrorIs(t, err, ErrSeatsSold)
}

func TestSessionRepoUpdateMovesSoldSeats(t *testing.T) {
	db, mock := newMock(t)
	show := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectSessionRefs(mock, 7, 5, 10, 8)
	mock.ExpectQuery("FROM tickets t WHERE t.movie_session_id").WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"max_row", "max_seat"}).AddRow(2, 3))
	mock.ExpectExec("UPDATE movie_sessions SET").WithArgs(show, 7, 5, 4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ms.id = ?")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(4, show, 7, 5, "Heat", "Hall", 10, 8, 2))

	s, err := NewSessionRepo(db).Update(context.Background(), 4, SessionInput{ShowTime: show, MovieID: 7, CinemaHallID: 5})
	require.NoError(t, err)
	assert.Equal(t, 78, s.TicketsAvailable())
}
