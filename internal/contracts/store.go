package contracts

import (
	"context"
	"sync"

	"sinistra/pkg/platform/sentinel"
)

// Store resolves a polymorphic contract reference to its guarantee view.
// The contract system of record lives outside this core; implementations
// adapt whatever that system returns.
type Store interface {
	Resolve(ctx context.Context, ref Ref) (GuaranteeView, error)
}

// InMemory keeps registered contracts keyed by (variant, id). It backs unit
// tests and single-node deployments where contracts are synced in at startup.
type InMemory struct {
	mu        sync.RWMutex
	contracts map[Ref]Contract
}

func NewInMemory() *InMemory {
	return &InMemory{contracts: make(map[Ref]Contract)}
}

// Register stores a contract under its own reference.
func (s *InMemory) Register(c Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[c.Ref()] = c
}

func (s *InMemory) Resolve(_ context.Context, ref Ref) (GuaranteeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[ref]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return View(c.Guarantees()), nil
}
