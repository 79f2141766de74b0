package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sinistra/internal/audit"
	"sinistra/internal/authz"
	claimmodels "sinistra/internal/claims/models"
	claimstore "sinistra/internal/claims/store"
	"sinistra/internal/contracts"
	"sinistra/internal/notify"
	"sinistra/internal/quittance/metrics"
	"sinistra/internal/quittance/models"
	"sinistra/internal/quittance/store"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/requestcontext"
)

var testMetrics = metrics.New()

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type SettlementSuite struct {
	suite.Suite

	claims     *claimstore.InMemory
	quittances *store.InMemory
	svc        *Service
	ctx        context.Context
}

func TestSettlementSuite(t *testing.T) {
	suite.Run(t, new(SettlementSuite))
}

func (s *SettlementSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.claims = claimstore.NewInMemory()
	s.quittances = store.NewInMemory()
	auditor := audit.NewPublisher(audit.NewInMemory())
	s.svc = New(s.quittances, s.claims, notify.Noop{}, auditor, testMetrics, logger)

	ctx := requestcontext.WithTime(context.Background(), baseTime)
	s.ctx = requestcontext.WithActorID(ctx, id.ActorID("valideur-3"))
}

// claimInPayment seeds a claim already approved for payment with one pending
// receipt, bypassing the lifecycle service.
func (s *SettlementSuite) claimInPayment() (*claimmodels.Claim, *models.Quittance) {
	ref := contracts.Ref{Variant: contracts.VariantCreditGroupe, ContractID: id.NewContractID()}
	claim, err := claimmodels.NewClaim(id.NewClaimID(), "SIN-2024-TEST01", ref,
		claimmodels.ClaimTypeDeces, baseTime.AddDate(0, 0, -10), 300_000, nil, baseTime)
	s.Require().NoError(err)
	claim.ApplyStartInstruction(baseTime)
	claim.ApplyAdvanceToSettlement(baseTime)
	claim.ApplyApproveAssessment(300_000, "", baseTime)
	s.Require().NoError(s.claims.Create(s.ctx, claim))

	q, err := models.NewQuittance(id.NewQuittanceID(), "SIN-2024-TEST01-Q1", claim.ID,
		models.TypeCapitalRestantDu, 300_000, "MicroFin Sarl")
	s.Require().NoError(err)
	s.Require().NoError(s.quittances.CreateBatch(s.ctx, []*models.Quittance{q}))
	return claim, q
}

func (s *SettlementSuite) TestValidateRecordsValideur() {
	_, q := s.claimInPayment()

	validated, err := s.svc.Validate(s.ctx, q.ID, authz.Capabilities{CanValidateClaims: true})
	s.Require().NoError(err)

	s.Equal(models.StatusValidee, validated.Statut)
	s.Equal(id.ActorID("valideur-3"), validated.Valideur)
	s.Require().NotNil(validated.DateValidation)
	s.Equal(baseTime, *validated.DateValidation)
}

func (s *SettlementSuite) TestValidateDeniedWithoutCapability() {
	_, q := s.claimInPayment()
	_, err := s.svc.Validate(s.ctx, q.ID, authz.Capabilities{CanPayQuittances: true})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *SettlementSuite) TestPayRequiresTransactionNumberForTracedModes() {
	_, q := s.claimInPayment()
	admin := authz.AdminCapabilities()
	_, err := s.svc.Validate(s.ctx, q.ID, admin)
	s.Require().NoError(err)

	_, err = s.svc.Pay(s.ctx, q.ID, models.ModeVirement, "", admin)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = s.svc.Pay(s.ctx, q.ID, models.ModeMobileMoney, "", admin)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *SettlementSuite) TestPayInCashNeedsNoTransactionNumber() {
	claim, q := s.claimInPayment()
	admin := authz.AdminCapabilities()
	_, err := s.svc.Validate(s.ctx, q.ID, admin)
	s.Require().NoError(err)

	paid, err := s.svc.Pay(s.ctx, q.ID, models.ModeEspeces, "", admin)
	s.Require().NoError(err)

	s.Equal(models.StatusPayee, paid.Statut)
	s.Equal(models.ModeEspeces, paid.ModePaiement)
	s.Empty(paid.NumeroTransaction)

	settled, err := s.claims.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(claimmodels.StatusPaye, settled.Statut)
}

func (s *SettlementSuite) TestPaySucceedsWhenClaimAlreadySettled() {
	claim, q := s.claimInPayment()
	admin := authz.AdminCapabilities()
	_, err := s.svc.Validate(s.ctx, q.ID, admin)
	s.Require().NoError(err)

	// A racing final payment settled the claim between this payment's commit
	// and its own settlement pass.
	_, err = s.claims.Execute(s.ctx, claim.ID,
		func(c *claimmodels.Claim) error { return nil },
		func(c *claimmodels.Claim) { c.ApplyMarkPaid(baseTime) })
	s.Require().NoError(err)

	paid, err := s.svc.Pay(s.ctx, q.ID, models.ModeVirement, "TRX-42", admin)
	s.Require().NoError(err)
	s.Equal(models.StatusPayee, paid.Statut)

	settled, err := s.claims.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(claimmodels.StatusPaye, settled.Statut)
}

func (s *SettlementSuite) TestPayRecordsTrailAndSettlesClaim() {
	claim, q := s.claimInPayment()
	admin := authz.AdminCapabilities()

	_, err := s.svc.Validate(s.ctx, q.ID, admin)
	s.Require().NoError(err)
	paid, err := s.svc.Pay(s.ctx, q.ID, models.ModeMobileMoney, "MM-778812", admin)
	s.Require().NoError(err)

	s.Equal(models.StatusPayee, paid.Statut)
	s.Equal(models.ModeMobileMoney, paid.ModePaiement)
	s.Equal("MM-778812", paid.NumeroTransaction)

	settled, err := s.claims.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(claimmodels.StatusPaye, settled.Statut)
}

func (s *SettlementSuite) TestCancelledIsTerminal() {
	_, q := s.claimInPayment()
	admin := authz.AdminCapabilities()

	_, err := s.svc.Cancel(s.ctx, q.ID, "doublon", admin)
	s.Require().NoError(err)

	_, err = s.svc.Validate(s.ctx, q.ID, admin)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.svc.Cancel(s.ctx, q.ID, "encore", admin)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *SettlementSuite) TestPaidReceiptCannotBeCancelled() {
	_, q := s.claimInPayment()
	admin := authz.AdminCapabilities()

	_, err := s.svc.Validate(s.ctx, q.ID, admin)
	s.Require().NoError(err)
	_, err = s.svc.Pay(s.ctx, q.ID, models.ModeCheque, "CHQ-1", admin)
	s.Require().NoError(err)

	_, err = s.svc.Cancel(s.ctx, q.ID, "trop tard", admin)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *SettlementSuite) TestArchivedClaimLocksReceipts() {
	claim, q := s.claimInPayment()
	admin := authz.AdminCapabilities()

	_, err := s.claims.Execute(s.ctx, claim.ID,
		func(c *claimmodels.Claim) error { return nil },
		func(c *claimmodels.Claim) {
			c.ApplyMarkPaid(baseTime)
			c.ApplyArchive(baseTime)
		})
	s.Require().NoError(err)

	_, err = s.svc.Validate(s.ctx, q.ID, admin)
	s.True(dErrors.HasCode(err, dErrors.CodeLocked))
	_, err = s.svc.Cancel(s.ctx, q.ID, "motif", admin)
	s.True(dErrors.HasCode(err, dErrors.CodeLocked))
}
