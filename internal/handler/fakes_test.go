package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func newCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func asUser(c echo.Context, id uint64, role string) echo.Context {
	c.Set(ctxUserID, id)
	c.Set(ctxRole, role)
	return c
}

type fakeGenres struct {
	byID    map[uint64]model.Genre
	nextID  uint64
	deleted []uint64
	err     error
}

func newFakeGenres(gs ...model.Genre) *fakeGenres {
	f := &fakeGenres{byID: map[uint64]model.Genre{}, nextID: 100}
	for _, g := range gs {
		f.byID[g.ID] = g
	}
	return f
}

func (f *fakeGenres) List(context.Context) ([]model.Genre, error) {
	out := []model.Genre{}
	for _, g := range f.byID {
		out = append(out, g)
	}
	return out, f.err
}

func (f *fakeGenres) GetByID(_ context.Context, id uint64) (*model.Genre, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (f *fakeGenres) Create(_ context.Context, g *model.Genre) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	g.ID = f.nextID
	f.byID[g.ID] = *g
	return nil
}

func (f *fakeGenres) Update(_ context.Context, g *model.Genre) error {
	if _, ok := f.byID[g.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[g.ID] = *g
	return nil
}

func (f *fakeGenres) Delete(_ context.Context, id uint64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeHalls holds a single hall; a nil cur with no err mimics a store
// that hands back no row.
type fakeHalls struct {
	cur     *model.CinemaHall
	updated *model.CinemaHall
	err     error
}

func (f *fakeHalls) List(context.Context) ([]model.CinemaHall, error) {
	if f.cur == nil {
		return []model.CinemaHall{}, f.err
	}
	return []model.CinemaHall{*f.cur}, f.err
}

func (f *fakeHalls) GetByID(context.Context, uint64) (*model.CinemaHall, error) {
	return f.cur, nil
}

func (f *fakeHalls) Create(_ context.Context, h *model.CinemaHall) error {
	h.ID = 1
	return f.err
}

func (f *fakeHalls) Update(_ context.Context, h *model.CinemaHall) error {
	if f.err != nil {
		return f.err
	}
	f.updated = h
	return nil
}

func (f *fakeHalls) Delete(context.Context, uint64) error { return f.err }

type fakeMovies struct {
	movies   []model.Movie
	gotList  *repository.MovieFilter
	gotWrite *repository.MovieInput
	writeErr error
}

func (f *fakeMovies) List(_ context.Context, flt repository.MovieFilter) ([]model.Movie, error) {
	f.gotList = &flt
	return f.movies, nil
}

func (f *fakeMovies) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	for _, m := range f.movies {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMovies) Create(_ context.Context, in repository.MovieInput) (*model.Movie, error) {
	f.gotWrite = &in
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return movieFromInput(1, in), nil
}

func (f *fakeMovies) Update(_ context.Context, id uint64, in repository.MovieInput) (*model.Movie, error) {
	f.gotWrite = &in
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return movieFromInput(id, in), nil
}

func (f *fakeMovies) Delete(context.Context, uint64) error { return nil }

func movieFromInput(id uint64, in repository.MovieInput) *model.Movie {
	m := &model.Movie{ID: id, Title: in.Title, Description: in.Description, Duration: in.Duration}
	for _, g := range in.GenreIDs {
		m.Genres = append(m.Genres, model.Genre{ID: g})
	}
	for _, a := range in.ActorIDs {
		m.Actors = append(m.Actors, model.Actor{ID: a})
	}
	return m
}

type fakeSessions struct {
	sessions []model.MovieSession
	taken    []model.Place
	gotList  *repository.SessionFilter
	gotWrite *repository.SessionInput
}

func (f *fakeSessions) List(_ context.Context, flt repository.SessionFilter) ([]model.MovieSession, error) {
	f.gotList = &flt
	return f.sessions, nil
}

func (f *fakeSessions) GetByID(_ context.Context, id uint64) (*model.MovieSession, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessions) TakenPlaces(context.Context, uint64) ([]model.Place, error) {
	return f.taken, nil
}

func (f *fakeSessions) Create(_ context.Context, in repository.SessionInput) (*model.MovieSession, error) {
	f.gotWrite = &in
	return &model.MovieSession{ID: 9, ShowTime: in.ShowTime, MovieID: in.MovieID, CinemaHallID: in.CinemaHallID}, nil
}

func (f *fakeSessions) Update(_ context.Context, id uint64, in repository.SessionInput) (*model.MovieSession, error) {
	f.gotWrite = &in
	return &model.MovieSession{ID: id, ShowTime: in.ShowTime, MovieID: in.MovieID, CinemaHallID: in.CinemaHallID}, nil
}

func (f *fakeSessions) Delete(context.Context, uint64) error { return repository.ErrConflict }

// fakeOrders keeps orders of every user and scopes reads the way the
// repository does.
type fakeOrders struct {
	orders     []model.Order
	createdFor uint64
	createdIn  []repository.TicketInput
	createErr  error
}

func (f *fakeOrders) mine(userID uint64) []model.Order {
	var out []model.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeOrders) ListByUser(_ context.Context, userID uint64, limit, offset int) ([]model.Order, int, error) {
	mine := f.mine(userID)
	if offset >= len(mine) {
		return []model.Order{}, len(mine), nil
	}
	end := min(offset+limit, len(mine))
	return mine[offset:end], len(mine), nil
}

func (f *fakeOrders) GetByIDForUser(_ context.Context, id, userID uint64) (*model.Order, error) {
	for _, o := range f.mine(userID) {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrders) Create(_ context.Context, userID uint64, tickets []repository.TicketInput) (*model.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdFor = userID
	f.createdIn = tickets
	o := model.Order{ID: uint64(len(f.orders) + 1), UserID: userID}
	for i, t := range tickets {
		o.Tickets = append(o.Tickets, model.Ticket{
			ID: uint64(i + 1), OrderID: o.ID, MovieSessionID: t.MovieSessionID, Row: t.Row, Seat: t.Seat,
			Session: model.MovieSession{ID: t.MovieSessionID, MovieTitle: "Heat", HallName: "Blue", HallRows: 10, HallSeatsInRow: 8},
		})
	}
	f.orders = append(f.orders, o)
	return &o, nil
}

type fakeEvents struct {
	mu   sync.Mutex
	got  chan queue.OrderCreatedEvent
	fail error
	hold chan struct{} // when set, publishing waits for it to close
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{got: make(chan queue.OrderCreatedEvent, 4)}
}

func (f *fakeEvents) PublishOrderCreated(_ context.Context, ev queue.OrderCreatedEvent) error {
	if f.hold != nil {
		<-f.hold
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got <- ev
	return f.fail
}

type fakeUsers struct {
	byEmail map[string]model.User
	nextID  uint64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]model.User{}, nextID: 1}
}

func (f *fakeUsers) Create(_ context.Context, email, hash, role string) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrDuplicate
	}
	id := f.nextID
	f.nextID++
	f.byEmail[email] = model.User{ID: id, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	return id, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[repository.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
