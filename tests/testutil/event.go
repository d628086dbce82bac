package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
)

// TestEvent is a minimal domain event for publisher tests
type TestEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

// NewTestEvent creates a TestEvent for a fresh aggregate id
func NewTestEvent(eventType string) *TestEvent {
	return NewTestEventFor(eventType, uuid.New())
}

// NewTestEventFor creates a TestEvent for aggregateID
func NewTestEventFor(eventType string, aggregateID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", aggregateID),
		Data:            "test-data",
	}
}

// WaitForCondition polls condition until it holds or timeout elapses.
// It reports whether the condition was met.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// WaitForEventCount waits until the publisher has recorded at least count events
func WaitForEventCount(t *testing.T, publisher *RecordingEventPublisher, count int, timeout time.Duration) bool {
	t.Helper()

	return WaitForCondition(t, func() bool {
		return len(publisher.Events()) >= count
	}, timeout, 10*time.Millisecond)
}
