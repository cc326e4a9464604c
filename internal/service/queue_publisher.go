// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/cinema-booking/internal/queue"
)

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
    QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
    PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
    Close() error
}

// Publisher sends order events to the broker.  Each publish opens its own
// connection, so a broker outage never leaves the publisher in a broken
// state.
type Publisher struct {
    URL  string
    Log  *slog.Logger
    dial func(url string) (amqpChannel, func() error, error)
    now  func() time.Time
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *slog.Logger) *Publisher {
    if log == nil {
        log = slog.New(slog.DiscardHandler)
    }
    return &Publisher{URL: url, Log: log, dial: dialChannel, now: time.Now}
}

func dialChannel(url string) (amqpChannel, func() error, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, nil, fmt.Errorf("channel open: %w", err)
    }
    return ch, conn.Close, nil
}

// PublishOrderCreated publishes ev to the durable "order.created" queue as
// a persistent JSON message.
func (p *Publisher) PublishOrderCreated(ctx context.Context, ev q.OrderCreatedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    dial, now := p.dial, p.now
    if dial == nil {
        dial = dialChannel
    }
    if now == nil {
        now = time.Now
    }

    ch, closeConn, err := dial(p.URL)
    if err != nil {
        p.logger().WarnContext(ctx, "rabbitmq: connect failed", slog.Any("err", err))
        return err
    }
    defer func() { _ = closeConn() }()
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.OrderCreatedQueue, // name
        true,                // durable
        false,               // autoDelete
        false,               // exclusive
        false,               // noWait
        nil,                 // args
    ); err != nil {
        p.logger().WarnContext(ctx, "rabbitmq: queue declare failed", slog.Any("err", err))
        return fmt.Errorf("queue declare: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                  // default exchange
        q.OrderCreatedQueue, // routing key = queue name
        false,               // mandatory
        false,               // immediate
        pub,
    ); err != nil {
        p.logger().WarnContext(ctx, "rabbitmq: publish failed", slog.Any("err", err))
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

func (p *Publisher) logger() *slog.Logger {
    if p.Log == nil {
        return slog.New(slog.DiscardHandler)
    }
    return p.Log
}
