package mocks

import (
	"context"
	"sync"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
)

// MockUserRepo answers with the Func fields when set. Otherwise it behaves as
// a small in-memory store keyed by email, so handlers that only register and
// look up accounts need no stubbing.
type MockUserRepo struct {
	domain.UserRepository
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	GetByIdFunc    func(ctx context.Context, id string) (*domain.User, error)

	mu    sync.Mutex
	users map[string]*domain.User
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Email]; ok {
		return domain.ErrUserAlreadyExists
	}

	if m.users == nil {
		m.users = make(map[string]*domain.User)
	}
	m.users[user.Email] = user

	return nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[email]; ok {
		return user, nil
	}

	return nil, domain.ErrRecordNotFound
}

func (m *MockUserRepo) GetById(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, domain.ErrRecordNotFound
}
