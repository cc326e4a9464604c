package service

import (
    "context"
    "encoding/json"
    "errors"
    "testing"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    q "github.com/iliyamo/cinema-booking/internal/queue"
)

type fakeChannel struct {
    declared  []string
    published []amqp.Publishing
    keys      []string
    closed    bool
    failPub   error
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
    if !durable {
        return amqp.Queue{}, errors.New("queue must be durable")
    }
    f.declared = append(f.declared, name)
    return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
    if f.failPub != nil {
        return f.failPub
    }
    f.keys = append(f.keys, key)
    f.published = append(f.published, msg)
    return nil
}

func (f *fakeChannel) Close() error {
    f.closed = true
    return nil
}

func newTestPublisher(ch *fakeChannel, dialErr error) (*Publisher, *bool) {
    connClosed := false
    p := NewPublisher("amqp://test", nil)
    p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
    p.dial = func(string) (amqpChannel, func() error, error) {
        if dialErr != nil {
            return nil, nil, dialErr
        }
        return ch, func() error { connClosed = true; return nil }, nil
    }
    return p, &connClosed
}

func TestPublishOrderCreated(t *testing.T) {
    ch := &fakeChannel{}
    p, connClosed := newTestPublisher(ch, nil)
    ev := q.OrderCreatedEvent{OrderID: 5, UserID: 7, Tickets: []q.TicketEntry{{MovieSessionID: 3, Row: 1, Seat: 2}}}

    require.NoError(t, p.PublishOrderCreated(context.Background(), ev))
    assert.Equal(t, []string{q.OrderCreatedQueue}, ch.declared)
    assert.Equal(t, []string{q.OrderCreatedQueue}, ch.keys)
    require.Len(t, ch.published, 1)
    msg := ch.published[0]
    assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
    assert.Equal(t, "application/json", msg.ContentType)

    var got q.OrderCreatedEvent
    require.NoError(t, json.Unmarshal(msg.Body, &got))
    assert.Equal(t, ev, got)
    assert.True(t, ch.closed)
    assert.True(t, *connClosed)
}

func TestPublishOrderCreatedErrors(t *testing.T) {
    p, _ := newTestPublisher(nil, errors.New("connection refused"))
    assert.ErrorContains(t, p.PublishOrderCreated(context.Background(), q.OrderCreatedEvent{}), "connection refused")

    ch := &fakeChannel{failPub: errors.New("channel closed")}
    p, _ = newTestPublisher(ch, nil)
    err := p.PublishOrderCreated(context.Background(), q.OrderCreatedEvent{})
    assert.ErrorContains(t, err, "publish")
    assert.True(t, ch.closed)
}
