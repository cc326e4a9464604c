package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieFilter narrows a movie listing.  Zero values impose no constraint.
// ActorIDs and GenreIDs match movies linked to at least one of the ids;
// separate filters are combined with AND.
type MovieFilter struct {
	ActorIDs []uint64
	GenreIDs []uint64
	Title    string // case-insensitive substring
}

// MovieInput is the writable part of a movie.
type MovieInput struct {
	Title       string
	Description string
	Duration    uint32
	GenreIDs    []uint64
	ActorIDs    []uint64
}

// MovieRepo manages movies and their genre/actor links.
type MovieRepo struct {
	db *sqlx.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sqlx.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// List returns the movies matching f ordered by id.  Actor and genre
// constraints are semi-joins, so a movie matching several listed ids still
// appears once.  Genres and actors of the result are loaded with one query
// each.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter) ([]model.Movie, error) {
	var where []string
	var args []any
	if len(f.ActorIDs) > 0 {
		where = append(where, `m.id IN (SELECT ma.movie_id FROM movie_actors ma WHERE ma.actor_id IN (?))`)
		args = append(args, f.ActorIDs)
	}
	if len(f.GenreIDs) > 0 {
		where = append(where, `m.id IN (SELECT mg.movie_id FROM movie_genres mg WHERE mg.genre_id IN (?))`)
		args = append(args, f.GenreIDs)
	}
	// whitespace is part of the needle; only an absent title is no filter
	if f.Title != "" {
		where = append(where, `LOWER(m.title) LIKE ?`)
		args = append(args, "%"+escapeLike(strings.ToLower(f.Title))+"%")
	}

	q := `SELECT m.id, m.title, m.description, m.duration FROM movies m`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY m.id`

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, err
	}
	movies := []model.Movie{}
	if err := r.db.SelectContext(ctx, &movies, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	if err := r.attachRelations(ctx, movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetByID returns the movie with its genres and actors.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	movies := make([]model.Movie, 1)
	if err := getOne(ctx, r.db, &movies[0], `SELECT id, title, description, duration FROM movies WHERE id = ?`, id); err != nil {
		return nil, err
	}
	if err := r.attachRelations(ctx, movies); err != nil {
		return nil, err
	}
	return &movies[0], nil
}

// Create inserts the movie and its links in one transaction.  Unknown
// genre or actor ids are reported as a *FieldError.
func (r *MovieRepo) Create(ctx context.Context, in MovieInput) (*model.Movie, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	id, err := insert(ctx, tx, `INSERT INTO movies (title, description, duration) VALUES (?, ?, ?)`, in.Title, in.Description, in.Duration)
	if err != nil {
		return nil, err
	}
	if err := replaceLinks(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update overwrites the movie columns and replaces both link sets.
func (r *MovieRepo) Update(ctx context.Context, id uint64, in MovieInput) (*model.Movie, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	if err := execOne(ctx, tx, `UPDATE movies SET title = ?, description = ?, duration = ? WHERE id = ?`, in.Title, in.Description, in.Duration, id); err != nil {
		return nil, err
	}
	if err := replaceLinks(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the movie.  Movies with sessions yield ErrConflict.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	return execOne(ctx, r.db, `DELETE FROM movies WHERE id = ?`, id)
}

type genreLink struct {
	MovieID uint64 `db:"movie_id"`
	model.Genre
}

type actorLink struct {
	MovieID uint64 `db:"movie_id"`
	model.Actor
}

func (r *MovieRepo) attachRelations(ctx context.Context, movies []model.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	ids := make([]uint64, len(movies))
	pos := make(map[uint64]int, len(movies))
	for i := range movies {
		ids[i] = movies[i].ID
		pos[movies[i].ID] = i
		movies[i].Genres = []model.Genre{}
		movies[i].Actors = []model.Actor{}
	}

	q, args, err := sqlx.In(`SELECT mg.movie_id, g.id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id IN (?) ORDER BY g.id`, ids)
	if err != nil {
		return err
	}
	var genres []genreLink
	if err := r.db.SelectContext(ctx, &genres, r.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, g := range genres {
		i := pos[g.MovieID]
		movies[i].Genres = append(movies[i].Genres, g.Genre)
	}

	q, args, err = sqlx.In(`SELECT ma.movie_id, a.id, a.first_name, a.last_name
		FROM movie_actors ma JOIN actors a ON a.id = ma.actor_id
		WHERE ma.movie_id IN (?) ORDER BY a.id`, ids)
	if err != nil {
		return err
	}
	var actors []actorLink
	if err := r.db.SelectContext(ctx, &actors, r.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, a := range actors {
		i := pos[a.MovieID]
		movies[i].Actors = append(movies[i].Actors, a.Actor)
	}
	return nil
}

func replaceLinks(ctx context.Context, tx *sqlx.Tx, movieID uint64, in MovieInput) error {
	if err := checkIDs(ctx, tx, "genres", "genres", in.GenreIDs); err != nil {
		return err
	}
	if err := checkIDs(ctx, tx, "actors", "actors", in.ActorIDs); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_genres WHERE movie_id = ?`, movieID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_actors WHERE movie_id = ?`, movieID); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, `INSERT INTO movie_genres (movie_id, genre_id) VALUES `, movieID, in.GenreIDs); err != nil {
		return err
	}
	return insertLinks(ctx, tx, `INSERT INTO movie_actors (movie_id, actor_id) VALUES `, movieID, in.ActorIDs)
}

func insertLinks(ctx context.Context, tx *sqlx.Tx, prefix string, movieID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(prefix)
	args := make([]any, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?)")
		args = append(args, movieID, id)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return translate(err)
}

// checkIDs returns a *FieldError listing the ids missing from table.
func checkIDs(ctx context.Context, tx *sqlx.Tx, field, table string, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`SELECT id FROM `+table+` WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	var found []uint64
	if err := tx.SelectContext(ctx, &found, tx.Rebind(q), args...); err != nil {
		return err
	}
	present := make(map[uint64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint64
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &FieldError{Field: field, IDs: missing, Err: ErrInvalidReference}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
