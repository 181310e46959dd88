package mocks

import (
	"context"
	"sync"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/queue"
)

// MockPublisher records published events per queue.
type MockPublisher struct {
	mu     sync.Mutex
	events map[string][]queue.ReservationEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{events: make(map[string][]queue.ReservationEvent)}
}

func (m *MockPublisher) PublishReservationConfirmed(ctx context.Context, event queue.ReservationEvent) error {
	m.record(queue.ReservationConfirmedQueue, event)
	return nil
}

func (m *MockPublisher) PublishReservationCancelled(ctx context.Context, event queue.ReservationEvent) error {
	m.record(queue.ReservationCancelledQueue, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func (m *MockPublisher) Events(queueName string) []queue.ReservationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]queue.ReservationEvent(nil), m.events[queueName]...)
}

func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = make(map[string][]queue.ReservationEvent)
}

func (m *MockPublisher) record(queueName string, event queue.ReservationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[queueName] = append(m.events[queueName], event)
}
