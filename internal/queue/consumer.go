package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

const maxBackoff = 30 * time.Second

// StartOrderConsumer connects to RabbitMQ, declares the order.created queue
// (durable) and appends every received event to the file at path as a
// single line. It reconnects with exponential backoff and returns only
// when ctx is cancelled. Messages that cannot be decoded or written are
// rejected without requeue so they never block the queue.
func StartOrderConsumer(ctx context.Context, url, path string, log *slog.Logger) error {
    if log == nil {
        log = slog.New(slog.DiscardHandler)
    }
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("order-consumer: failed to dial broker", slog.Any("err", err), slog.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < maxBackoff {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, path, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("order-consumer: consume loop ended; reconnecting", slog.Any("err", err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, path string, log *slog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("order-consumer: set QoS failed", slog.Any("err", err))
    }

    if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(OrderCreatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := HandleMessage(d.Body, path); err != nil {
                log.Error("order-consumer: handle message failed", slog.Any("err", err))
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes an OrderCreatedEvent and appends its log line to path.
func HandleMessage(body []byte, path string) error {
    var ev OrderCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    return appendLine(path, FormatOrderLine(ev))
}

// FormatOrderLine renders ev as one newline-terminated log line.
func FormatOrderLine(ev OrderCreatedEvent) string {
    seats := make([]string, 0, len(ev.Tickets))
    for _, t := range ev.Tickets {
        seats = append(seats, fmt.Sprintf("%d:%d-%d", t.MovieSessionID, t.Row, t.Seat))
    }
    movie, hall, show := "", "", ""
    if len(ev.Tickets) > 0 {
        movie, hall, show = ev.Tickets[0].MovieTitle, ev.Tickets[0].HallName, ev.Tickets[0].ShowTime
    }
    return fmt.Sprintf("[%s] Order created | order_id=%d | user_id=%d | movie=%q | hall=%q | show_time=%s | tickets=%d | seats=[%s]\n",
        ev.CreatedAt, ev.OrderID, ev.UserID, movie, hall, show, len(ev.Tickets), strings.Join(seats, ","))
}

func appendLine(path, line string) error {
    if dir := filepath.Dir(path); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("mkdir %s: %w", dir, err)
        }
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
