package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DialTimeout bounds how long a publish waits for the broker connection.
const DialTimeout = 2 * time.Second

// Publisher sends task events to ActivityQueue.  A connection is dialled
// per publish so the API process keeps no long-lived broker state.
type Publisher struct {
	url     string
	observe func(eventType string, err error)
}

// NewPublisher returns a publisher for the broker at url.  observe, when
// not nil, is told about every attempt.
func NewPublisher(url string, observe func(eventType string, err error)) *Publisher {
	return &Publisher{url: url, observe: observe}
}

// Publish declares the queue (idempotent) and sends ev as a persistent
// JSON message.
func (p *Publisher) Publish(ctx context.Context, ev TaskEvent) (err error) {
	if p.observe != nil {
		defer func() { p.observe(ev.Type, err) }()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(DialTimeout),
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(ActivityQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	return ch.PublishWithContext(ctx, "", ActivityQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	})
}

// Nop discards events.  It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, TaskEvent) error { return nil }
