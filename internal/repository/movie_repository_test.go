package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var movieCols = []string{"id", "title", "description", "duration"}

func expectRelations(mock sqlmock.Sqlmock, movieIDs ...driver.Value) {
	mock.ExpectQuery("FROM movie_genres mg JOIN genres g").WithArgs(movieIDs...).
		WillReturnRows(sqlmock.NewRows([]string{"movie_id", "id", "name"}).
			AddRow(1, 3, "Action").AddRow(1, 4, "Sci-Fi"))
	mock.ExpectQuery("FROM movie_actors ma JOIN actors a").WithArgs(movieIDs...).
		WillReturnRows(sqlmock.NewRows([]string{"movie_id", "id", "first_name", "last_name"}).
			AddRow(1, 1, "Keanu", "Reeves"))
}

func TestMovieRepoListUnfiltered(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.id, m.title, m.description, m.duration FROM movies m ORDER BY m.id")).
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow(1, "The Matrix", "Neo", 136).
			AddRow(2, "Amelie", "Paris", 122))
	expectRelations(mock, 1, 2)

	got, err := NewMovieRepo(db).List(context.Background(), MovieFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Genres, 2)
	assert.Equal(t, "Keanu Reeves", got[0].Actors[0].FullName())
	assert.NotNil(t, got[1].Genres)
	assert.Empty(t, got[1].Genres)
	assert.Empty(t, got[1].Actors)
}

func TestMovieRepoListCombinesFilters(t *testing.T) {
	db, mock := newMock(t)
	q := regexp.QuoteMeta("FROM movies m WHERE " +
		"m.id IN (SELECT ma.movie_id FROM movie_actors ma WHERE ma.actor_id IN (?, ?)) AND " +
		"m.id IN (SELECT mg.movie_id FROM movie_genres mg WHERE mg.genre_id IN (?)) AND " +
		"LOWER(m.title) LIKE ? ORDER BY m.id")
	mock.ExpectQuery(q).WithArgs(1, 2, 3, "%mat%").
		WillReturnRows(sqlmock.NewRows(movieCols).AddRow(1, "The Matrix", "Neo", 136))
	expectRelations(mock, 1)

	got, err := NewMovieRepo(db).List(context.Background(), MovieFilter{
		ActorIDs: []uint64{1, 2},
		GenreIDs: []uint64{3},
		Title:    "MAT",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "The Matrix", got[0].Title)
}

func TestMovieRepoListNoMatchSkipsRelations(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("LOWER\\(m.title\\) LIKE").WithArgs("%zzz%").
		WillReturnRows(sqlmock.NewRows(movieCols))

	got, err := NewMovieRepo(db).List(context.Background(), MovieFilter{Title: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMovieRepoListKeepsTitleWhitespace(t *testing.T) {
	for _, title := range []string{" bat", " "} {
		db, mock := newMock(t)
		mock.ExpectQuery("LOWER\\(m.title\\) LIKE").WithArgs("%" + title + "%").
			WillReturnRows(sqlmock.NewRows(movieCols))

		got, err := NewMovieRepo(db).List(context.Background(), MovieFilter{Title: title})
		require.NoError(t, err, "title=%q", title)
		assert.Empty(t, got)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}

func TestMovieRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movies").WithArgs("The Matrix", "Neo", 136).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM genres WHERE id IN").WithArgs(3, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(4))
	mock.ExpectQuery("SELECT id FROM actors WHERE id IN").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM movie_genres").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM movie_actors").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?),(?, ?)")).
		WithArgs(1, 3, 1, 4).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO movie_actors").WithArgs(1, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM movies WHERE id").WithArgs(1).
		WillReturnRows(sqlmock.NewRows(movieCols).AddRow(1, "The Matrix", "Neo", 136))
	expectRelations(mock, 1)

	m, err := NewMovieRepo(db).Create(context.Background(), MovieInput{
		Title: "The Matrix", Description: "Neo", Duration: 136,
		GenreIDs: []uint64{3, 4}, ActorIDs: []uint64{1},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.ID)
	assert.Len(t, m.Genres, 2)
}

func TestMovieRepoCreateUnknownActor(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM actors WHERE id IN").WithArgs(1, 99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	_, err := NewMovieRepo(db).Create(context.Background(), MovieInput{
		Title: "X", Duration: 90, ActorIDs: []uint64{1, 99},
	})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "actors", fe.Field)
	assert.Equal(t, []uint64{99}, fe.IDs)
	assert.ErrorIs(t, err, ErrInvalidReference)
}
