// Package outbox implements the transactional outbox: events are saved
// alongside aggregate state and relayed to a publisher by a background
// worker, so publication survives process crashes between commit and send.
package outbox

import (
	"context"
	"sync"

	id "modelkit/pkg/domain"
	"modelkit/pkg/event"
)

// MemoryStore is an in-memory EventStore for tests and single-process
// wiring. Events keep arrival order; handled events stay retained so tests
// can assert on them.
type MemoryStore struct {
	mu      sync.RWMutex
	events  []event.DomainEvent
	handled map[id.EventID]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{handled: make(map[id.EventID]bool)}
}

func (s *MemoryStore) Save(_ context.Context, events ...event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) GetUnhandled(_ context.Context, limit int) ([]event.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []event.DomainEvent
	for _, evt := range s.events {
		if s.handled[evt.ID] {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkAsHandled(_ context.Context, eventIDs ...id.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eventID := range eventIDs {
		s.handled[eventID] = true
	}
	return nil
}

// Pending returns the number of saved but unhandled events.
func (s *MemoryStore) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, evt := range s.events {
		if !s.handled[evt.ID] {
			n++
		}
	}
	return n
}
