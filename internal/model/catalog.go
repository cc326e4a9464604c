package model

// Genre is a label movies can be filed under.  Names are unique.
//
// Fields:
//  ID   – primary key identifier.
//  Name – unique genre label.
type Genre struct {
    ID   uint64 `db:"id"`   // genres.id
    Name string `db:"name"` // genres.name
}

// Actor is a performer credited in movies.
//
// Fields:
//  ID        – primary key identifier.
//  FirstName – given name.
//  LastName  – family name.
type Actor struct {
    ID        uint64 `db:"id"`         // actors.id
    FirstName string `db:"first_name"` // actors.first_name
    LastName  string `db:"last_name"`  // actors.last_name
}

// FullName joins first and last name the way list views display actors.
func (a Actor) FullName() string {
    return a.FirstName + " " + a.LastName
}

// CinemaHall is a screening room with a rectangular seat grid.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – human readable label.
//  Rows       – number of seat rows.
//  SeatsInRow – number of seats in every row.
type CinemaHall struct {
    ID         uint64 `db:"id"`           // cinema_halls.id
    Name       string `db:"name"`         // cinema_halls.name
    Rows       uint32 `db:"rows"`         // cinema_halls.rows
    SeatsInRow uint32 `db:"seats_in_row"` // cinema_halls.seats_in_row
}

// Capacity is the total number of seats in the hall.
func (h CinemaHall) Capacity() int {
    return int(h.Rows) * int(h.SeatsInRow)
}

// Movie is a film in the catalog together with its genres and cast.
// Genres and Actors are loaded by the repository and carry no ordering
// significance.
type Movie struct {
    ID          uint64  `db:"id"`          // movies.id
    Title       string  `db:"title"`       // movies.title
    Description string  `db:"description"` // movies.description
    Duration    uint32  `db:"duration"`    // movies.duration (minutes)
    Genres      []Genre `db:"-"`
    Actors      []Actor `db:"-"`
}
