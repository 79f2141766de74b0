package documents

import (
	"context"
	"sort"
	"sync"

	"sinistra/internal/claims/models"
	id "sinistra/pkg/domain"
	"sinistra/pkg/platform/sentinel"
)

// InMemory is the development and test implementation.
type InMemory struct {
	mu   sync.Mutex
	docs map[id.DocumentID]*models.Document
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[id.DocumentID]*models.Document)}
}

func (s *InMemory) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.docs[doc.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *InMemory) ListByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, doc := range s.docs {
		if doc.ClaimID == claimID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[docID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, docID)
	return nil
}
