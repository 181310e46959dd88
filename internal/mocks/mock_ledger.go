package mocks

import (
	"context"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Availability(ctx context.Context, sessionID string) (*domain.Availability, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Availability), args.Error(1)
}

func (m *MockLedger) ReserveSeats(ctx context.Context, sessionID, userID string, seats []string) (*domain.Reservation, error) {
	args := m.Called(ctx, sessionID, userID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockLedger) CancelReservation(ctx context.Context, reservationID string, requester domain.Requester) (bool, error) {
	args := m.Called(ctx, reservationID, requester)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) ValidateTicket(ctx context.Context, reservationID string) (domain.TicketValidation, error) {
	args := m.Called(ctx, reservationID)
	return args.Get(0).(domain.TicketValidation), args.Error(1)
}
