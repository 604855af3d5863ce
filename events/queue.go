// Package events provides a bounded in-process queue for outbound owner notifications.
package events

import (
	"context"
	"sync"
)

type Event interface {
	EventType() string
}

type EventQueue struct {
	events chan Event
	mu     sync.RWMutex
	closed bool
}

func NewEventQueue(bufferSize int) *EventQueue {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventQueue{
		events: make(chan Event, bufferSize),
	}
}

// Enqueue adds event without blocking. It reports false when the queue is
// full or closed and the event was dropped.
func (eq *EventQueue) Enqueue(event Event) bool {
	eq.mu.RLock()
	defer eq.mu.RUnlock()

	if eq.closed {
		return false
	}

	select {
	case eq.events <- event:
		return true
	default:
		return false
	}
}

// NextEvent blocks until the next event is available or ctx is cancelled.
func (eq *EventQueue) NextEvent(ctx context.Context) (Event, error) {
	select {
	case event, ok := <-eq.events:
		if !ok {
			return nil, context.Canceled
		}
		return event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetAndClearPendingEvents returns all pending events without blocking
func (eq *EventQueue) GetAndClearPendingEvents() []Event {
	events := []Event{}
	for {
		select {
		case event, ok := <-eq.events:
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}

func (eq *EventQueue) Close() {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if !eq.closed {
		eq.closed = true
		close(eq.events)
	}
}
