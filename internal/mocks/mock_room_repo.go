package mocks

import (
	"context"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
)

type MockRoomRepo struct {
	domain.RoomRepository
	CreateFunc   func(ctx context.Context, room *domain.Room) error
	GetByIdFunc  func(ctx context.Context, id string) (*domain.Room, error)
	GetSeatsFunc func(ctx context.Context, roomID string) ([]domain.Seat, error)
}

func (m *MockRoomRepo) Create(ctx context.Context, room *domain.Room) error {
	return m.CreateFunc(ctx, room)
}

func (m *MockRoomRepo) GetById(ctx context.Context, id string) (*domain.Room, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockRoomRepo) GetSeats(ctx context.Context, roomID string) ([]domain.Seat, error) {
	return m.GetSeatsFunc(ctx, roomID)
}
