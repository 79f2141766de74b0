package store

import (
	"context"
	"strings"
	"sync"

	"sinistra/internal/claims/models"
	id "sinistra/pkg/domain"
	"sinistra/pkg/platform/sentinel"
)

// InMemory is the development and test implementation. A single mutex guards
// the map; Execute holds it across validate and mutate, which is the whole
// concurrency guarantee.
type InMemory struct {
	mu     sync.Mutex
	claims map[id.ClaimID]*models.Claim
}

func NewInMemory() *InMemory {
	return &InMemory{claims: make(map[id.ClaimID]*models.Claim)}
}

func (s *InMemory) Create(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[claim.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.claims {
		if strings.EqualFold(existing.NumeroSinistre, claim.NumeroSinistre) {
			return sentinel.ErrConflict
		}
	}
	cp := *claim
	s.claims[claim.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, claimID id.ClaimID) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *claim
	return &cp, nil
}

func (s *InMemory) FindByNumero(_ context.Context, numero string) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, claim := range s.claims {
		if strings.EqualFold(claim.NumeroSinistre, numero) {
			cp := *claim
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Claim, 0, len(s.claims))
	for _, claim := range s.claims {
		cp := *claim
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, claimID id.ClaimID,
	validate func(*models.Claim) error, mutate func(*models.Claim)) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	// Validate and mutate a working copy so a panic inside mutate cannot
	// leave the stored aggregate half-updated.
	working := *claim
	if err := validate(&working); err != nil {
		return nil, err
	}
	mutate(&working)
	s.claims[claimID] = &working
	cp := working
	return &cp, nil
}

func (s *InMemory) SetArchiveRef(_ context.Context, claimID id.ClaimID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return sentinel.ErrNotFound
	}
	claim.FichierArchive = ref
	return nil
}
