package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"sinistra/internal/quittance/models"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) newQuittance(reference string, claimID id.ClaimID) *models.Quittance {
	q, err := models.NewQuittance(id.NewQuittanceID(), reference, claimID,
		models.TypeCapitalRestantDu, 150_000, "MicroFin Sarl")
	s.Require().NoError(err)
	return q
}

func (s *MemoryStoreSuite) TestCreateBatchIsAllOrNothing() {
	claimID := id.NewClaimID()
	s.Require().NoError(s.store.CreateBatch(s.ctx,
		[]*models.Quittance{s.newQuittance("SIN-2024-BBBB0001-Q1", claimID)}))

	fresh := s.newQuittance("SIN-2024-BBBB0001-Q2", claimID)
	dup := s.newQuittance("SIN-2024-BBBB0001-Q1", claimID)
	err := s.store.CreateBatch(s.ctx, []*models.Quittance{fresh, dup})
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.FindByID(s.ctx, fresh.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListByClaimSortsByReference() {
	claimID := id.NewClaimID()
	q2 := s.newQuittance("SIN-2024-BBBB0002-Q2", claimID)
	q1 := s.newQuittance("SIN-2024-BBBB0002-Q1", claimID)
	s.Require().NoError(s.store.CreateBatch(s.ctx, []*models.Quittance{q2, q1}))
	s.Require().NoError(s.store.CreateBatch(s.ctx,
		[]*models.Quittance{s.newQuittance("SIN-2024-OTHER-Q1", id.NewClaimID())}))

	out, err := s.store.ListByClaim(s.ctx, claimID)
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal("SIN-2024-BBBB0002-Q1", out[0].Reference)
	s.Equal("SIN-2024-BBBB0002-Q2", out[1].Reference)
}

func (s *MemoryStoreSuite) TestExecuteRollsBackOnValidationFailure() {
	claimID := id.NewClaimID()
	q := s.newQuittance("SIN-2024-BBBB0003-Q1", claimID)
	s.Require().NoError(s.store.CreateBatch(s.ctx, []*models.Quittance{q}))

	_, err := s.store.Execute(s.ctx, q.ID,
		func(w *models.Quittance) error {
			w.MotifAnnulation = "half-written"
			return dErrors.New(dErrors.CodeInvalidTransition, "nope")
		},
		func(w *models.Quittance) { w.Statut = models.StatusAnnulee },
	)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	stored, err := s.store.FindByID(s.ctx, q.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusEnAttente, stored.Statut)
	s.Empty(stored.MotifAnnulation)
}
