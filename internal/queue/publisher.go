// Package queue publishes reservation events for downstream consumers such as
// notification workers.
package queue

import (
	"context"
	"time"
)

const (
	ReservationConfirmedQueue = "reservation.confirmed"
	ReservationCancelledQueue = "reservation.cancelled"
)

type ReservationEvent struct {
	ReservationID string    `json:"reservationId"`
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId"`
	Seats         []string  `json:"seats"`
	TotalPrice    string    `json:"totalPrice"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishReservationConfirmed(ctx context.Context, event ReservationEvent) error
	PublishReservationCancelled(ctx context.Context, event ReservationEvent) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishReservationConfirmed(context.Context, ReservationEvent) error {
	return nil
}

func (NoopPublisher) PublishReservationCancelled(context.Context, ReservationEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
