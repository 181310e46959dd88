package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher keeps one connection open and publishes persistent JSON
// messages to durable queues through the default exchange. Channels are not
// safe for concurrent use, so publishing is serialized.
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	for _, name := range []string{ReservationConfirmedQueue, ReservationCancelledQueue} {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("rabbitmq declare %s: %w", name, err)
		}
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) PublishReservationConfirmed(ctx context.Context, event ReservationEvent) error {
	return p.publish(ctx, ReservationConfirmedQueue, event)
}

func (p *AMQPPublisher) PublishReservationCancelled(ctx context.Context, event ReservationEvent) error {
	return p.publish(ctx, ReservationCancelledQueue, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event ReservationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    event.ReservationID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", queue, err)
	}

	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_ = p.ch.Close()

	return p.conn.Close()
}
