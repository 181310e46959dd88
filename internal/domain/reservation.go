package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

type Reservation struct {
	ID          string
	SessionID   string
	UserID      string
	Seats       []string
	Status      ReservationStatus
	TotalPrice  decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time
	ScannedAt   *time.Time
}

// NewReservation starts a PENDING reservation for the normalized seat set.
func NewReservation(sessionID, userID string, seats []string) *Reservation {
	now := time.Now().UTC()

	return &Reservation{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		UserID:     userID,
		Seats:      NormalizeSeats(seats),
		Status:     ReservationStatusPending,
		TotalPrice: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Confirm moves a pending reservation to CONFIRMED and prices it at
// seats × unit price.
func (r *Reservation) Confirm(unitPrice decimal.Decimal) error {
	if r.Status != ReservationStatusPending {
		return ErrInvalidTransition
	}

	r.Status = ReservationStatusConfirmed
	r.TotalPrice = unitPrice.Mul(decimal.NewFromInt(int64(len(r.Seats))))
	r.UpdatedAt = time.Now().UTC()

	return nil
}

func (r *Reservation) Scanned() bool {
	return r.ScannedAt != nil
}

// CanCancel is true only for confirmed tickets that have not been used for admission.
func (r *Reservation) CanCancel() bool {
	return r.Status == ReservationStatusConfirmed && !r.Scanned()
}

func (r *Reservation) CanScan() bool {
	return r.Status == ReservationStatusConfirmed && !r.Scanned()
}

// OwnedBy reports whether the requester may act on this reservation.
func (r *Reservation) OwnedBy(requester Requester) bool {
	return requester.IsAdmin() || r.UserID == requester.UserID
}

type TicketRejection string

const (
	TicketAlreadyScanned TicketRejection = "ALREADY_SCANNED"
	TicketInvalid        TicketRejection = "INVALID_TICKET"
)

type TicketValidation struct {
	ReservationID string
	Valid         bool
	Reason        TicketRejection
	Reservation   *Reservation
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *Reservation) error
	GetById(ctx context.Context, id string) (*Reservation, error)
	GetOccupiedSeats(ctx context.Context, sessionID string) ([]string, error)
	Cancel(ctx context.Context, id string) error
	MarkScanned(ctx context.Context, id string) error
	GetByUserId(ctx context.Context, userID string, pagination Pagination) ([]Reservation, *Metadata, error)
}
