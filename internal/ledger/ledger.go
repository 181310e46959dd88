// Package ledger is the single authority on seat occupancy. Every reservation
// write goes through a Ledger so that a seat is held by at most one confirmed
// reservation per session.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/ledger"

// maxWriteRetries bounds how often a write that lost a uniqueness race
// against another process is re-checked and re-attempted.
const maxWriteRetries = 1

type Ledger struct {
	sessions     domain.SessionRepository
	reservations domain.ReservationRepository
	locks        *sessionLocks
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *ledgerMetrics
}

type ledgerMetrics struct {
	confirmed metric.Int64Counter
	conflicts metric.Int64Counter
	cancelled metric.Int64Counter
	scanned   metric.Int64Counter
}

func New(sessions domain.SessionRepository, reservations domain.ReservationRepository, logger *slog.Logger) *Ledger {
	return &Ledger{
		sessions:     sessions,
		reservations: reservations,
		locks:        newSessionLocks(),
		logger:       logger,
		tracer:       otel.Tracer(instrumentationName),
		metrics:      newLedgerMetrics(otel.Meter(instrumentationName)),
	}
}

func newLedgerMetrics(meter metric.Meter) *ledgerMetrics {
	var (
		m    ledgerMetrics
		errs [4]error
	)

	m.confirmed, errs[0] = meter.Int64Counter("ledger.reservations.confirmed",
		metric.WithDescription("Reservations accepted by the ledger"))
	m.conflicts, errs[1] = meter.Int64Counter("ledger.reservations.conflicts",
		metric.WithDescription("Reservation attempts rejected because a seat was taken"))
	m.cancelled, errs[2] = meter.Int64Counter("ledger.reservations.cancelled",
		metric.WithDescription("Reservations cancelled and released"))
	m.scanned, errs[3] = meter.Int64Counter("ledger.tickets.scanned",
		metric.WithDescription("Ticket scans by outcome"))

	// Instruments that failed to register are still usable no-ops.
	if err := errors.Join(errs[:]...); err != nil {
		otel.Handle(err)
	}

	return &m
}

// Availability reports the capacity of the session's room and the seats held
// by confirmed reservations. It never blocks writers.
func (l *Ledger) Availability(ctx context.Context, sessionID string) (*domain.Availability, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.Availability",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	session, err := l.sessions.GetById(ctx, sessionID)
	if err != nil {
		return nil, recordError(span, err)
	}

	occupied, err := l.reservations.GetOccupiedSeats(ctx, sessionID)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("read occupancy: %w", err))
	}

	domain.SortSeats(occupied)

	return &domain.Availability{
		SessionID:     session.ID,
		Capacity:      session.Room.Capacity(),
		OccupiedSeats: occupied,
	}, nil
}

// ReserveSeats confirms the whole seat selection for userID or rejects it as a
// unit. Requests for the same session are serialized; different sessions
// proceed independently.
func (l *Ledger) ReserveSeats(ctx context.Context, sessionID, userID string, seats []string) (*domain.Reservation, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.ReserveSeats", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("user.id", userID),
		attribute.Int("seats.requested", len(seats)),
	))
	defer span.End()

	reservation := domain.NewReservation(sessionID, userID, seats)
	if len(reservation.Seats) == 0 {
		return nil, recordError(span, domain.ErrEmptySelection)
	}

	session, err := l.sessions.GetById(ctx, sessionID)
	if err != nil {
		return nil, recordError(span, err)
	}

	if invalid := invalidSeats(session.Room, reservation.Seats); len(invalid) > 0 {
		return nil, recordError(span, &domain.InvalidSeatLabelError{Labels: invalid})
	}

	unlock := l.locks.lock(sessionID)
	defer unlock()

	err = reservation.Confirm(session.Price)
	if err != nil {
		return nil, recordError(span, err)
	}

	for attempt := 0; attempt <= maxWriteRetries; attempt++ {
		occupied, err := l.reservations.GetOccupiedSeats(ctx, sessionID)
		if err != nil {
			return nil, recordError(span, fmt.Errorf("read occupancy: %w", err))
		}

		if conflict := conflictingSeats(session.Room, reservation.Seats, occupied); conflict != nil {
			l.metrics.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("sold_out", conflict.SoldOut)))
			return nil, recordError(span, conflict)
		}

		err = l.reservations.Create(ctx, reservation)
		if err == nil {
			l.metrics.confirmed.Add(ctx, 1)
			span.SetAttributes(attribute.String("reservation.id", reservation.ID))

			return reservation, nil
		}

		if !errors.Is(err, domain.ErrSeatAlreadyReserved) {
			return nil, recordError(span, fmt.Errorf("write reservation: %w", err))
		}

		l.logger.Warn("reservation write lost a seat race, re-checking occupancy",
			"session_id", sessionID,
			"attempt", attempt+1,
		)
	}

	occupied, err := l.reservations.GetOccupiedSeats(ctx, sessionID)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("read occupancy: %w", err))
	}

	conflict := conflictingSeats(session.Room, reservation.Seats, occupied)
	if conflict == nil {
		conflict = &domain.SeatConflictError{Labels: slices.Clone(reservation.Seats)}
	}

	l.metrics.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("sold_out", conflict.SoldOut)))

	return nil, recordError(span, conflict)
}

// CancelReservation releases the seats of a confirmed reservation and reports
// whether this call released them. Only the owner or an admin may cancel;
// cancelling twice is a no-op that reports false.
func (l *Ledger) CancelReservation(ctx context.Context, reservationID string, requester domain.Requester) (bool, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.CancelReservation", trace.WithAttributes(
		attribute.String("reservation.id", reservationID),
		attribute.String("requester.id", requester.UserID),
	))
	defer span.End()

	reservation, err := l.reservations.GetById(ctx, reservationID)
	if err != nil {
		return false, recordError(span, err)
	}

	if !reservation.OwnedBy(requester) {
		return false, recordError(span, domain.ErrForbidden)
	}

	unlock := l.locks.lock(reservation.SessionID)
	defer unlock()

	for attempt := 0; attempt <= maxWriteRetries; attempt++ {
		switch {
		case reservation.Status == domain.ReservationStatusCancelled:
			return false, nil
		case !reservation.CanCancel():
			return false, recordError(span, domain.ErrInvalidTransition)
		}

		err = l.reservations.Cancel(ctx, reservation.ID)
		if err == nil {
			l.metrics.cancelled.Add(ctx, 1)
			return true, nil
		}

		if !errors.Is(err, domain.ErrEditConflict) {
			return false, recordError(span, fmt.Errorf("cancel reservation: %w", err))
		}

		reservation, err = l.reservations.GetById(ctx, reservationID)
		if err != nil {
			return false, recordError(span, err)
		}
	}

	return false, recordError(span, domain.ErrEditConflict)
}

// ValidateTicket admits a confirmed reservation exactly once. Rejections are
// reported in the result; the error is reserved for store failures.
func (l *Ledger) ValidateTicket(ctx context.Context, reservationID string) (domain.TicketValidation, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.ValidateTicket",
		trace.WithAttributes(attribute.String("reservation.id", reservationID)))
	defer span.End()

	result := domain.TicketValidation{ReservationID: reservationID}

	reservation, err := l.reservations.GetById(ctx, reservationID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return l.rejectTicket(ctx, result, domain.TicketInvalid), nil
		}

		return result, recordError(span, err)
	}

	unlock := l.locks.lock(reservation.SessionID)
	defer unlock()

	for attempt := 0; attempt <= maxWriteRetries; attempt++ {
		result.Reservation = reservation

		switch {
		case reservation.Status != domain.ReservationStatusConfirmed:
			return l.rejectTicket(ctx, result, domain.TicketInvalid), nil
		case reservation.Scanned():
			return l.rejectTicket(ctx, result, domain.TicketAlreadyScanned), nil
		}

		err = l.reservations.MarkScanned(ctx, reservation.ID)
		if err == nil {
			scannedAt := time.Now().UTC()
			reservation.ScannedAt = &scannedAt

			result.Valid = true
			l.metrics.scanned.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "admitted")))

			return result, nil
		}

		if !errors.Is(err, domain.ErrEditConflict) {
			return result, recordError(span, fmt.Errorf("mark ticket scanned: %w", err))
		}

		reservation, err = l.reservations.GetById(ctx, reservationID)
		if err != nil {
			return result, recordError(span, err)
		}
	}

	return result, recordError(span, domain.ErrEditConflict)
}

func (l *Ledger) rejectTicket(ctx context.Context, result domain.TicketValidation, reason domain.TicketRejection) domain.TicketValidation {
	result.Valid = false
	result.Reason = reason

	l.metrics.scanned.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(reason))))

	return result
}

func invalidSeats(room domain.Room, seats []string) []string {
	var invalid []string

	for _, label := range seats {
		if !room.HasSeat(label) {
			invalid = append(invalid, label)
		}
	}

	return invalid
}

// conflictingSeats returns nil when none of the requested seats is occupied.
func conflictingSeats(room domain.Room, requested, occupied []string) *domain.SeatConflictError {
	taken := make(map[string]struct{}, len(occupied))
	for _, label := range occupied {
		taken[label] = struct{}{}
	}

	var overlap []string
	for _, label := range requested {
		if _, ok := taken[label]; ok {
			overlap = append(overlap, label)
		}
	}

	if len(overlap) == 0 {
		return nil
	}

	return &domain.SeatConflictError{
		Labels:  overlap,
		SoldOut: len(taken) >= room.Capacity(),
	}
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}
