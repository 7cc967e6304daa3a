package mocks

import (
	"context"
	"sync"
)

// EventPublisherMock implements EventPublisher for testing purposes
type EventPublisherMock struct {
	mu sync.Mutex

	PublishFunc     func(ctx context.Context, event any) error
	PublishedEvents []any
}

func (m *EventPublisherMock) Publish(ctx context.Context, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = append(m.PublishedEvents, event)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	return nil
}

// Published returns a snapshot of all published events.
func (m *EventPublisherMock) Published() []any {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]any, len(m.PublishedEvents))
	copy(out, m.PublishedEvents)
	return out
}
