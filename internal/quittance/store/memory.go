package store

import (
	"context"
	"sort"
	"sync"

	"sinistra/internal/quittance/models"
	id "sinistra/pkg/domain"
	"sinistra/pkg/platform/sentinel"
)

// InMemory is the development and test implementation.
type InMemory struct {
	mu         sync.Mutex
	quittances map[id.QuittanceID]*models.Quittance
	references map[string]id.QuittanceID
}

func NewInMemory() *InMemory {
	return &InMemory{
		quittances: make(map[id.QuittanceID]*models.Quittance),
		references: make(map[string]id.QuittanceID),
	}
}

func (s *InMemory) CreateBatch(_ context.Context, quittances []*models.Quittance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range quittances {
		if _, ok := s.references[q.Reference]; ok {
			return sentinel.ErrConflict
		}
	}
	for _, q := range quittances {
		cp := *q
		s.quittances[q.ID] = &cp
		s.references[q.Reference] = q.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, quittanceID id.QuittanceID) (*models.Quittance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quittances[quittanceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *InMemory) ListByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Quittance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Quittance
	for _, q := range s.quittances {
		if q.ClaimID == claimID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, quittanceID id.QuittanceID,
	validate func(*models.Quittance) error, mutate func(*models.Quittance)) (*models.Quittance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quittances[quittanceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *q
	if err := validate(&working); err != nil {
		return nil, err
	}
	mutate(&working)
	s.quittances[quittanceID] = &working
	cp := working
	return &cp, nil
}
