package mocks

import (
	"context"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSessionRepo struct {
	mock.Mock
	domain.SessionRepository
}

func (m *MockSessionRepo) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetById(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepo) Search(
	ctx context.Context,
	filter domain.SessionFilter,
	pagination domain.Pagination) ([]domain.SessionSummary, *domain.Metadata, error) {

	args := m.Called(ctx, filter, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.SessionSummary), args.Get(1).(*domain.Metadata), args.Error(2)
}
