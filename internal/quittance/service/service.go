// Package service implements the settlement engine: deterministic quittance
// generation from the guarantee view, and the validate/pay/cancel workflow
// with separation of duties.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

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
	"sinistra/pkg/platform/sentinel"
	"sinistra/pkg/requestcontext"
)

type Service struct {
	quittances store.Store
	claims     claimstore.Store
	notifier   notify.Notifier
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(quittances store.Store, claims claimstore.Store, notifier notify.Notifier,
	auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		quittances: quittances,
		claims:     claims,
		notifier:   notifier,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
	}
}

// GenerateForClaim issues the settlement receipts for an approved claim.
// The split is decided by the contract's guarantee view:
//
//   - prevoyance present: one principal_sans_interet receipt to the EMF plus
//     one capital_prevoyance receipt to the named beneficiary
//   - no prevoyance: a single capital_restant_du receipt to the EMF
//
// Generation is idempotent: if receipts already exist for the claim they are
// returned as-is, so a retried approval never double-issues.
func (s *Service) GenerateForClaim(ctx context.Context, claim *claimmodels.Claim,
	view contracts.GuaranteeView) ([]*models.Quittance, error) {
	existing, err := s.quittances.ListByClaim(ctx, claim.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	var quittances []*models.Quittance
	if view.HasPrevoyance() {
		principal, err := models.NewQuittance(id.NewQuittanceID(),
			claim.NumeroSinistre+"-Q1", claim.ID,
			models.TypePrincipalSansInteret, claim.CapitalRestantDu, view.EMFName())
		if err != nil {
			return nil, err
		}
		capital, err := models.NewQuittance(id.NewQuittanceID(),
			claim.NumeroSinistre+"-Q2", claim.ID,
			models.TypeCapitalPrevoyance, view.PrevoyanceCapital(), view.PrevoyanceBeneficiary())
		if err != nil {
			return nil, err
		}
		quittances = []*models.Quittance{principal, capital}
	} else {
		single, err := models.NewQuittance(id.NewQuittanceID(),
			claim.NumeroSinistre+"-Q1", claim.ID,
			models.TypeCapitalRestantDu, claim.CapitalRestantDu, view.EMFName())
		if err != nil {
			return nil, err
		}
		quittances = []*models.Quittance{single}
	}

	if err := s.quittances.CreateBatch(ctx, quittances); err != nil {
		return nil, err
	}
	for _, q := range quittances {
		s.metrics.Generated.WithLabelValues(string(q.Type)).Inc()
		s.publish(ctx, notify.Event{
			Type:           notify.TypeQuittanceGenerated,
			NumeroSinistre: claim.NumeroSinistre,
			Reference:      q.Reference,
			Montant:        q.Montant,
			Beneficiaire:   q.Beneficiaire,
			OccurredAt:     requestcontext.Now(ctx).Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	s.record(ctx, audit.EventQuittancesGenerated, claim.ID, claim.NumeroSinistre,
		fmt.Sprintf("%d quittance(s) issued", len(quittances)))
	s.logger.InfoContext(ctx, "quittances generated",
		slog.String("numero_sinistre", claim.NumeroSinistre),
		slog.Int("count", len(quittances)))
	return quittances, nil
}

// Validate moves a receipt en_attente → validee, recording who validated it.
func (s *Service) Validate(ctx context.Context, quittanceID id.QuittanceID,
	caps authz.Capabilities) (*models.Quittance, error) {
	if err := authz.Require(caps, authz.CapValidateClaims); err != nil {
		return nil, err
	}
	claim, err := s.guardClaim(ctx, quittanceID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	valideur := requestcontext.ActorID(ctx)
	q, err := s.quittances.Execute(ctx, quittanceID,
		func(q *models.Quittance) error { return q.CanValidate() },
		func(q *models.Quittance) { q.ApplyValidate(valideur, now) },
	)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventQuittanceValidated, claim.ID, q.Reference, "")
	return q, nil
}

// Pay settles a validated receipt. When the last payable receipt of the claim
// is paid, the claim itself moves to paye.
func (s *Service) Pay(ctx context.Context, quittanceID id.QuittanceID,
	mode models.PaymentMode, numeroTransaction string, caps authz.Capabilities) (*models.Quittance, error) {
	if err := authz.Require(caps, authz.CapPayQuittances); err != nil {
		return nil, err
	}
	if numeroTransaction == "" && mode.RequiresTransactionNumber() {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"numero_transaction is required for %s payments", mode)
	}
	claim, err := s.guardClaim(ctx, quittanceID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	q, err := s.quittances.Execute(ctx, quittanceID,
		func(q *models.Quittance) error { return q.CanPay() },
		func(q *models.Quittance) { q.ApplyPay(mode, numeroTransaction, now) },
	)
	if err != nil {
		return nil, err
	}

	s.metrics.Paid.WithLabelValues(string(mode)).Inc()
	s.metrics.AmountPaid.Add(float64(q.Montant))
	s.record(ctx, audit.EventQuittancePaid, claim.ID, q.Reference,
		fmt.Sprintf("%d FCFA via %s", q.Montant, mode))
	s.publish(ctx, notify.Event{
		Type:           notify.TypeQuittancePaid,
		NumeroSinistre: claim.NumeroSinistre,
		Reference:      q.Reference,
		Montant:        q.Montant,
		Beneficiaire:   q.Beneficiaire,
		OccurredAt:     now.Format("2006-01-02T15:04:05Z07:00"),
	})

	if err := s.settleClaimIfComplete(ctx, claim); err != nil {
		return nil, err
	}
	return q, nil
}

// Cancel voids a receipt that has not been paid. A motif is mandatory because
// cancellation removes money from the payout and auditors will ask why.
func (s *Service) Cancel(ctx context.Context, quittanceID id.QuittanceID,
	motif string, caps authz.Capabilities) (*models.Quittance, error) {
	if err := authz.Require(caps, authz.CapValidateClaims); err != nil {
		return nil, err
	}
	if motif == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "motif_annulation is required")
	}
	claim, err := s.guardClaim(ctx, quittanceID)
	if err != nil {
		return nil, err
	}

	q, err := s.quittances.Execute(ctx, quittanceID,
		func(q *models.Quittance) error { return q.CanCancel() },
		func(q *models.Quittance) { q.ApplyCancel(motif) },
	)
	if err != nil {
		return nil, err
	}

	s.metrics.Cancellations.Inc()
	s.record(ctx, audit.EventQuittanceCancelled, claim.ID, q.Reference, motif)
	return q, nil
}

// Get returns one receipt.
func (s *Service) Get(ctx context.Context, quittanceID id.QuittanceID) (*models.Quittance, error) {
	return s.quittances.FindByID(ctx, quittanceID)
}

// ListByClaim returns a claim's receipts ordered by reference.
func (s *Service) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Quittance, error) {
	return s.quittances.ListByClaim(ctx, claimID)
}

// guardClaim loads the owning claim and enforces the archive lock. The lock
// check comes before any status check so operations against an archived claim
// fail ClaimLocked, not InvalidTransition.
func (s *Service) guardClaim(ctx context.Context, quittanceID id.QuittanceID) (*claimmodels.Claim, error) {
	q, err := s.quittances.FindByID(ctx, quittanceID)
	if err != nil {
		return nil, err
	}
	claim, err := s.claims.FindByID(ctx, q.ClaimID)
	if err != nil {
		return nil, err
	}
	if claim.IsLocked() {
		return nil, dErrors.Newf(dErrors.CodeLocked, "claim %s is archived", claim.NumeroSinistre)
	}
	return claim, nil
}

// settleClaimIfComplete moves the claim to paye once every non-cancelled
// receipt is paid. Cancelled receipts do not block settlement, but at least
// one paid receipt must exist, which holds here since a payment just landed.
func (s *Service) settleClaimIfComplete(ctx context.Context, claim *claimmodels.Claim) error {
	siblings, err := s.quittances.ListByClaim(ctx, claim.ID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		switch sibling.Statut {
		case models.StatusPayee, models.StatusAnnulee:
		default:
			return nil
		}
	}

	now := requestcontext.Now(ctx)
	_, err = s.claims.Execute(ctx, claim.ID,
		func(c *claimmodels.Claim) error { return c.CanMarkPaid() },
		func(c *claimmodels.Claim) { c.ApplyMarkPaid(now) },
	)
	if err != nil {
		// A racing final payment can settle the claim first. This payment
		// committed either way, so a claim already past en_paiement is not
		// a failure here.
		if dErrors.HasCode(err, dErrors.CodeInvalidTransition) ||
			errors.Is(err, sentinel.ErrStaleState) {
			return nil
		}
		return fmt.Errorf("settle claim %s: %w", claim.NumeroSinistre, err)
	}

	s.record(ctx, audit.EventClaimPaid, claim.ID, claim.NumeroSinistre, "all quittances paid")
	s.publish(ctx, notify.Event{
		Type:           notify.TypeClaimSettled,
		NumeroSinistre: claim.NumeroSinistre,
		OccurredAt:     now.Format("2006-01-02T15:04:05Z07:00"),
	})
	s.logger.InfoContext(ctx, "claim fully settled",
		slog.String("numero_sinistre", claim.NumeroSinistre))
	return nil
}

// publish is best effort. A notification failure never rolls back a payment.
func (s *Service) publish(ctx context.Context, event notify.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			slog.String("type", event.Type), slog.String("error", err.Error()))
	}
}

func (s *Service) record(ctx context.Context, action audit.AuditEvent, claimID id.ClaimID,
	subject, detail string) {
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    string(action),
		ActorID:   requestcontext.ActorID(ctx),
		ClaimID:   claimID,
		Subject:   subject,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit append failed",
			slog.String("action", string(action)), slog.String("error", err.Error()))
	}
}
