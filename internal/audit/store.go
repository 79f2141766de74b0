package audit

import (
	"context"
	"sync"

	id "sinistra/pkg/domain"
)

// InMemory keeps audit events in process. Development and test use only.
type InMemory struct {
	mu     sync.Mutex
	events []Event
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemory) ListByClaim(_ context.Context, claimID id.ClaimID) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, event := range s.events {
		if event.ClaimID == claimID {
			out = append(out, event)
		}
	}
	return out, nil
}

// All returns every recorded event, oldest first. Test helper.
func (s *InMemory) All() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
