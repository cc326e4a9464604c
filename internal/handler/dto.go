package handler

import (
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ----- catalog -----

type genreResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type actorResp struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type hallResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Rows       uint32 `json:"rows"`
	SeatsInRow uint32 `json:"seats_in_row"`
	Capacity   int    `json:"capacity"`
}

func newGenreResp(g model.Genre) genreResp { return genreResp{ID: g.ID, Name: g.Name} }

func newActorResp(a model.Actor) actorResp {
	return actorResp{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

func newHallResp(h model.CinemaHall) hallResp {
	return hallResp{ID: h.ID, Name: h.Name, Rows: h.Rows, SeatsInRow: h.SeatsInRow, Capacity: h.Capacity()}
}

// ----- movies -----

// movieListResp flattens genres and actors to their display names.
type movieListResp struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    uint32   `json:"duration"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

type movieDetailResp struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    uint32      `json:"duration"`
	Genres      []genreResp `json:"genres"`
	Actors      []actorResp `json:"actors"`
}

// movieWriteResp echoes a write payload: relations as ids.
type movieWriteResp struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    uint32   `json:"duration"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
}

func newMovieListResp(m model.Movie) movieListResp {
	out := movieListResp{
		ID: m.ID, Title: m.Title, Description: m.Description, Duration: m.Duration,
		Genres: make([]string, 0, len(m.Genres)),
		Actors: make([]string, 0, len(m.Actors)),
	}
	for _, g := range m.Genres {
		out.Genres = append(out.Genres, g.Name)
	}
	for _, a := range m.Actors {
		out.Actors = append(out.Actors, a.FullName())
	}
	return out
}

func newMovieDetailResp(m model.Movie) movieDetailResp {
	out := movieDetailResp{
		ID: m.ID, Title: m.Title, Description: m.Description, Duration: m.Duration,
		Genres: make([]genreResp, 0, len(m.Genres)),
		Actors: make([]actorResp, 0, len(m.Actors)),
	}
	for _, g := range m.Genres {
		out.Genres = append(out.Genres, newGenreResp(g))
	}
	for _, a := range m.Actors {
		out.Actors = append(out.Actors, newActorResp(a))
	}
	return out
}

func newMovieWriteResp(m model.Movie) movieWriteResp {
	out := movieWriteResp{
		ID: m.ID, Title: m.Title, Description: m.Description, Duration: m.Duration,
		Genres: genreIDs(m.Genres),
		Actors: actorIDs(m.Actors),
	}
	return out
}

func genreIDs(gs []model.Genre) []uint64 {
	ids := make([]uint64, 0, len(gs))
	for _, g := range gs {
		ids = append(ids, g.ID)
	}
	return ids
}

func actorIDs(as []model.Actor) []uint64 {
	ids := make([]uint64, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.ID)
	}
	return ids
}

// ----- sessions -----

type sessionListResp struct {
	ID                 uint64    `json:"id"`
	ShowTime           time.Time `json:"show_time"`
	MovieTitle         string    `json:"movie_title"`
	CinemaHallName     string    `json:"cinema_hall_name"`
	CinemaHallCapacity int       `json:"cinema_hall_capacity"`
	TicketsSold        int       `json:"tickets_sold"`
	TicketsAvailable   int       `json:"tickets_available"`
}

type placeResp struct {
	Row  uint32 `json:"row"`
	Seat uint32 `json:"seat"`
}

type sessionDetailResp struct {
	ID               uint64        `json:"id"`
	ShowTime         time.Time     `json:"show_time"`
	Movie            movieListResp `json:"movie"`
	CinemaHall       hallResp      `json:"cinema_hall"`
	TicketsSold      int           `json:"tickets_sold"`
	TicketsAvailable int           `json:"tickets_available"`
	TakenPlaces      []placeResp   `json:"taken_places"`
}

type sessionWriteResp struct {
	ID         uint64    `json:"id"`
	ShowTime   time.Time `json:"show_time"`
	Movie      uint64    `json:"movie"`
	CinemaHall uint64    `json:"cinema_hall"`
}

func newSessionListResp(s model.MovieSession) sessionListResp {
	return sessionListResp{
		ID:                 s.ID,
		ShowTime:           s.ShowTime,
		MovieTitle:         s.MovieTitle,
		CinemaHallName:     s.HallName,
		CinemaHallCapacity: s.Capacity(),
		TicketsSold:        s.TicketsSold,
		TicketsAvailable:   s.TicketsAvailable(),
	}
}

func newSessionDetailResp(s model.MovieSession, m model.Movie, taken []model.Place) sessionDetailResp {
	out := sessionDetailResp{
		ID:               s.ID,
		ShowTime:         s.ShowTime,
		Movie:            newMovieListResp(m),
		CinemaHall:       newHallResp(s.Hall()),
		TicketsSold:      s.TicketsSold,
		TicketsAvailable: s.TicketsAvailable(),
		TakenPlaces:      make([]placeResp, 0, len(taken)),
	}
	for _, p := range taken {
		out.TakenPlaces = append(out.TakenPlaces, placeResp{Row: p.Row, Seat: p.Seat})
	}
	return out
}

func newSessionWriteResp(s model.MovieSession) sessionWriteResp {
	return sessionWriteResp{ID: s.ID, ShowTime: s.ShowTime, Movie: s.MovieID, CinemaHall: s.CinemaHallID}
}

// ----- orders -----

// orderSessionResp is the session summary nested in order tickets.
type orderSessionResp struct {
	ID                 uint64    `json:"id"`
	ShowTime           time.Time `json:"show_time"`
	MovieTitle         string    `json:"movie_title"`
	CinemaHallName     string    `json:"cinema_hall_name"`
	CinemaHallCapacity int       `json:"cinema_hall_capacity"`
}

type ticketResp struct {
	ID           uint64           `json:"id"`
	Row          uint32           `json:"row"`
	Seat         uint32           `json:"seat"`
	MovieSession orderSessionResp `json:"movie_session"`
}

type orderResp struct {
	ID        uint64       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Tickets   []ticketResp `json:"tickets"`
}

// pageResp is the envelope of paginated lists.
type pageResp[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newOrderResp(o model.Order) orderResp {
	out := orderResp{ID: o.ID, CreatedAt: o.CreatedAt, Tickets: make([]ticketResp, 0, len(o.Tickets))}
	for _, t := range o.Tickets {
		s := t.Session
		out.Tickets = append(out.Tickets, ticketResp{
			ID:   t.ID,
			Row:  t.Row,
			Seat: t.Seat,
			MovieSession: orderSessionResp{
				ID:                 t.MovieSessionID,
				ShowTime:           s.ShowTime,
				MovieTitle:         s.MovieTitle,
				CinemaHallName:     s.HallName,
				CinemaHallCapacity: s.Capacity(),
			},
		})
	}
	return out
}
