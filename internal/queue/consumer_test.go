package queue

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking/internal/model"
)

func sampleEvent() OrderCreatedEvent {
    show := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
    o := model.Order{
        ID:        9,
        UserID:    4,
        CreatedAt: time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC),
        Tickets: []model.Ticket{
            {MovieSessionID: 2, Row: 3, Seat: 4, Session: model.MovieSession{ID: 2, ShowTime: show, MovieTitle: "Alien", HallName: "Red"}},
            {MovieSessionID: 2, Row: 3, Seat: 5, Session: model.MovieSession{ID: 2, ShowTime: show, MovieTitle: "Alien", HallName: "Red"}},
        },
    }
    return NewOrderCreatedEvent(o)
}

func TestNewOrderCreatedEvent(t *testing.T) {
    ev := sampleEvent()
    assert.Equal(t, uint64(9), ev.OrderID)
    assert.Equal(t, "2024-05-30T10:00:00Z", ev.CreatedAt)
    require.Len(t, ev.Tickets, 2)
    assert.Equal(t, "2024-06-01T18:30:00Z", ev.Tickets[0].ShowTime)
    assert.Equal(t, "Alien", ev.Tickets[1].MovieTitle)
}

func TestFormatOrderLine(t *testing.T) {
    line := FormatOrderLine(sampleEvent())
    assert.True(t, strings.HasSuffix(line, "\n"))
    assert.Contains(t, line, "order_id=9 | user_id=4")
    assert.Contains(t, line, `movie="Alien" | hall="Red"`)
    assert.Contains(t, line, "tickets=2 | seats=[2:3-4,2:3-5]")

    empty := FormatOrderLine(OrderCreatedEvent{OrderID: 1})
    assert.Contains(t, empty, "tickets=0 | seats=[]")
}

func TestHandleMessageAppends(t *testing.T) {
    path := filepath.Join(t.TempDir(), "nested", "orders.log")
    body := []byte(`{"order_id":1,"user_id":2,"created_at":"2024-01-01T00:00:00Z","tickets":[]}`)

    require.NoError(t, HandleMessage(body, path))
    require.NoError(t, HandleMessage(body, path))

    data, err := os.ReadFile(path)
    require.NoError(t, err)
    assert.Equal(t, 2, strings.Count(string(data), "Order created"))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
    path := filepath.Join(t.TempDir(), "orders.log")
    assert.ErrorContains(t, HandleMessage([]byte("{not json"), path), "unmarshal")
    _, err := os.Stat(path)
    assert.True(t, os.IsNotExist(err))
}
