package ledger

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
)

// memStore mimics the Postgres repositories: a seat label can only be held by
// one unreleased row per session, and state changes are conditional updates.
type memStore struct {
	mu           sync.Mutex
	sessions     map[string]domain.Session
	reservations map[string]domain.Reservation
	held         map[string]map[string]string

	// failCreates makes the next n Create calls report a uniqueness violation
	// without writing, as if a concurrent row had been there and gone again.
	failCreates int
	// beforeCreate runs ahead of each Create, outside the store lock.
	beforeCreate func()
	createCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		sessions:     make(map[string]domain.Session),
		reservations: make(map[string]domain.Reservation),
		held:         make(map[string]map[string]string),
	}
}

func (m *memStore) addSession(session domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session
}

// insertForeign writes a confirmed reservation the way another process would,
// bypassing the ledger.
func (m *memStore) insertForeign(sessionID, userID string, seats ...string) *domain.Reservation {
	reservation := domain.NewReservation(sessionID, userID, seats)
	reservation.Status = domain.ReservationStatusConfirmed

	if err := m.insert(reservation); err != nil {
		panic(err)
	}

	return reservation
}

func (m *memStore) Create(ctx context.Context, session *domain.Session) error {
	m.addSession(*session)
	return nil
}

func (m *memStore) GetById(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return &session, nil
}

func (m *memStore) Search(ctx context.Context, filter domain.SessionFilter, pagination domain.Pagination) ([]domain.SessionSummary, *domain.Metadata, error) {
	return nil, domain.NewMetadata(0, pagination), nil
}

// reservationStore exposes the reservation half of memStore; the method sets
// of the two repository interfaces overlap on GetById and Create.
type reservationStore struct {
	*memStore
}

func (r reservationStore) Create(ctx context.Context, reservation *domain.Reservation) error {
	m := r.memStore

	if m.beforeCreate != nil {
		m.beforeCreate()
	}

	m.mu.Lock()
	m.createCalls++
	fail := m.failCreates > 0
	if fail {
		m.failCreates--
	}
	m.mu.Unlock()

	if fail {
		return domain.ErrSeatAlreadyReserved
	}

	return m.insert(reservation)
}

func (m *memStore) insert(reservation *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	held := m.held[reservation.SessionID]
	if held == nil {
		held = make(map[string]string)
		m.held[reservation.SessionID] = held
	}

	for _, label := range reservation.Seats {
		if _, ok := held[label]; ok {
			return domain.ErrSeatAlreadyReserved
		}
	}

	for _, label := range reservation.Seats {
		held[label] = reservation.ID
	}

	stored := *reservation
	stored.Seats = slices.Clone(reservation.Seats)
	m.reservations[reservation.ID] = stored

	return nil
}

func (r reservationStore) GetById(ctx context.Context, id string) (*domain.Reservation, error) {
	m := r.memStore

	m.mu.Lock()
	defer m.mu.Unlock()

	reservation, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}

	reservation.Seats = slices.Clone(reservation.Seats)

	return &reservation, nil
}

func (r reservationStore) GetOccupiedSeats(ctx context.Context, sessionID string) ([]string, error) {
	m := r.memStore

	m.mu.Lock()
	defer m.mu.Unlock()

	occupied := make([]string, 0, len(m.held[sessionID]))
	for label := range m.held[sessionID] {
		occupied = append(occupied, label)
	}

	return occupied, nil
}

func (r reservationStore) Cancel(ctx context.Context, id string) error {
	m := r.memStore

	m.mu.Lock()
	defer m.mu.Unlock()

	reservation, ok := m.reservations[id]
	if !ok || reservation.Status != domain.ReservationStatusConfirmed || reservation.ScannedAt != nil {
		return domain.ErrEditConflict
	}

	now := time.Now().UTC()
	reservation.Status = domain.ReservationStatusCancelled
	reservation.CancelledAt = &now
	m.reservations[id] = reservation

	for _, label := range reservation.Seats {
		if m.held[reservation.SessionID][label] == id {
			delete(m.held[reservation.SessionID], label)
		}
	}

	return nil
}

func (r reservationStore) MarkScanned(ctx context.Context, id string) error {
	m := r.memStore

	m.mu.Lock()
	defer m.mu.Unlock()

	reservation, ok := m.reservations[id]
	if !ok || reservation.Status != domain.ReservationStatusConfirmed || reservation.ScannedAt != nil {
		return domain.ErrEditConflict
	}

	now := time.Now().UTC()
	reservation.ScannedAt = &now
	m.reservations[id] = reservation

	return nil
}

func (r reservationStore) GetByUserId(ctx context.Context, userID string, pagination domain.Pagination) ([]domain.Reservation, *domain.Metadata, error) {
	m := r.memStore

	m.mu.Lock()
	defer m.mu.Unlock()

	var reservations []domain.Reservation
	for _, reservation := range m.reservations {
		if reservation.UserID == userID {
			reservations = append(reservations, reservation)
		}
	}

	return reservations, domain.NewMetadata(len(reservations), pagination), nil
}

// confirmedSeats lists every label of every confirmed reservation of the
// session, duplicates included.
func (m *memStore) confirmedSeats(sessionID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var seats []string
	for _, reservation := range m.reservations {
		if reservation.SessionID == sessionID && reservation.Status == domain.ReservationStatusConfirmed {
			seats = append(seats, reservation.Seats...)
		}
	}

	return seats
}
