package model

import "time"

// TicketsAvailable returns how many seats are still free given the hall
// capacity and the number of tickets already sold for a session.
func TicketsAvailable(capacity, sold int) int {
    return capacity - sold
}

// MovieSession is a scheduled screening of a movie in a hall.  Besides the
// foreign keys it carries the joined movie title, the hall dimensions and
// the live ticket count so availability can be derived without another
// round trip.
//
// Fields:
//  ID             – primary key identifier.
//  ShowTime       – start of the screening (UTC).
//  MovieID        – screened movie.
//  CinemaHallID   – hall the screening takes place in.
//  MovieTitle     – movies.title of MovieID.
//  HallName       – cinema_halls.name of CinemaHallID.
//  HallRows       – cinema_halls.rows of CinemaHallID.
//  HallSeatsInRow – cinema_halls.seats_in_row of CinemaHallID.
//  TicketsSold    – count of tickets issued for the session at query time.
type MovieSession struct {
    ID             uint64    `db:"id"`                // movie_sessions.id
    ShowTime       time.Time `db:"show_time"`         // movie_sessions.show_time
    MovieID        uint64    `db:"movie_id"`          // movie_sessions.movie_id
    CinemaHallID   uint64    `db:"cinema_hall_id"`    // movie_sessions.cinema_hall_id
    MovieTitle     string    `db:"movie_title"`       // movies.title
    HallName       string    `db:"hall_name"`         // cinema_halls.name
    HallRows       uint32    `db:"hall_rows"`         // cinema_halls.rows
    HallSeatsInRow uint32    `db:"hall_seats_in_row"` // cinema_halls.seats_in_row
    TicketsSold    int       `db:"tickets_sold"`      // COUNT(tickets.id)
}

// Hall rebuilds the hall the session is screened in from the joined columns.
func (s MovieSession) Hall() CinemaHall {
    return CinemaHall{ID: s.CinemaHallID, Name: s.HallName, Rows: s.HallRows, SeatsInRow: s.HallSeatsInRow}
}

// Capacity is the seat count of the session's hall.
func (s MovieSession) Capacity() int {
    return s.Hall().Capacity()
}

// TicketsAvailable is the number of seats that can still be sold.
func (s MovieSession) TicketsAvailable() int {
    return TicketsAvailable(s.Capacity(), s.TicketsSold)
}

// Place is a seat position inside a hall.
type Place struct {
    Row  uint32 `db:"row"`
    Seat uint32 `db:"seat"`
}
