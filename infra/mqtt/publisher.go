package mqtt

import (
	"sync"

	"github.com/swiftresponder/swiftresponder/core/events"
	"github.com/swiftresponder/swiftresponder/core/telemetry"
)

// Publisher mirrors the core telemetry.Publisher interface.
type Publisher = telemetry.Publisher

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu        sync.Mutex
	Positions []events.PositionEvent
	Statuses  []events.StatusEvent
	Err       error
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishPosition records the event or returns the configured error.
func (m *MockPublisher) PublishPosition(ev events.PositionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Positions = append(m.Positions, ev)
	return nil
}

// PublishStatus records the event or returns the configured error.
func (m *MockPublisher) PublishStatus(ev events.StatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Statuses = append(m.Statuses, ev)
	return nil
}

// PositionCount returns the number of recorded position events.
func (m *MockPublisher) PositionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Positions)
}

// Close is a no-op.
func (m *MockPublisher) Close() {}
