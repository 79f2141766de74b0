// Package service drives the claim lifecycle. Every mutating operation
// checks, in order: capability, archive lock, state machine. The ordering is
// observable through error codes and must not change.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sinistra/internal/archive"
	"sinistra/internal/audit"
	"sinistra/internal/authz"
	"sinistra/internal/claims/metrics"
	"sinistra/internal/claims/models"
	"sinistra/internal/claims/store"
	"sinistra/internal/contracts"
	"sinistra/internal/notify"
	qmodels "sinistra/internal/quittance/models"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/requestcontext"
)

// Settlement is the slice of the quittance engine the lifecycle needs:
// issuing receipts at approval and checking completeness at closure.
type Settlement interface {
	GenerateForClaim(ctx context.Context, claim *models.Claim,
		view contracts.GuaranteeView) ([]*qmodels.Quittance, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*qmodels.Quittance, error)
}

type Service struct {
	claims     store.Store
	contracts  contracts.Store
	settlement Settlement
	guard      *archive.Guard
	notifier   notify.Notifier
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(claims store.Store, contractStore contracts.Store, settlement Settlement,
	guard *archive.Guard, notifier notify.Notifier, auditor *audit.Publisher,
	m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		claims:     claims,
		contracts:  contractStore,
		settlement: settlement,
		guard:      guard,
		notifier:   notifier,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
	}
}

// DeclareInput is the declaration payload after wire-level parsing.
type DeclareInput struct {
	NumeroSinistre string
	ContratRef     contracts.Ref
	Type           models.ClaimType
	DateSinistre   string
	MontantReclame *int64
}

// Declare opens a claim against a contract. The outstanding principal is
// snapshotted from the guarantee view at this moment and never recomputed,
// so later contract-side repayments don't shrink an in-flight claim.
func (s *Service) Declare(ctx context.Context, input DeclareInput,
	caps authz.Capabilities) (*models.Claim, error) {
	if err := authz.Require(caps, authz.CapProcessClaims); err != nil {
		return nil, err
	}

	view, err := s.contracts.Resolve(ctx, input.ContratRef)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	dateSinistre, err := parseDate(input.DateSinistre)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid date_sinistre")
	}

	numero := input.NumeroSinistre
	if numero == "" {
		numero = generateNumero(now.Year())
	}

	claim, err := models.NewClaim(id.NewClaimID(), numero, input.ContratRef, input.Type,
		dateSinistre, view.OutstandingPrincipal(), input.MontantReclame, now)
	if err != nil {
		return nil, err
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, err
	}

	s.metrics.Declared.WithLabelValues(string(claim.Type)).Inc()
	s.record(ctx, audit.EventClaimDeclared, claim, string(claim.Type))
	s.publish(ctx, notify.Event{
		Type:           notify.TypeClaimDeclared,
		NumeroSinistre: claim.NumeroSinistre,
		Montant:        claim.CapitalRestantDu,
		OccurredAt:     now.Format("2006-01-02T15:04:05Z07:00"),
	})
	s.logger.InfoContext(ctx, "claim declared",
		slog.String("numero_sinistre", claim.NumeroSinistre),
		slog.String("type", string(claim.Type)))
	return claim, nil
}

// StartInstruction acknowledges reception of the supporting documents and
// moves the claim en_cours → en_instruction.
func (s *Service) StartInstruction(ctx context.Context, claimID id.ClaimID,
	caps authz.Capabilities) (*models.Claim, error) {
	if err := authz.Require(caps, authz.CapProcessClaims); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	claim, err := s.transition(ctx, claimID,
		func(c *models.Claim) error { return c.CanStartInstruction() },
		func(c *models.Claim) { c.ApplyStartInstruction(now) },
	)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.EventInstructionStarted, claim, "")
	return claim, nil
}

// AdvanceToSettlement moves the claim en_instruction → en_reglement once the
// file is complete and ready for assessment.
func (s *Service) AdvanceToSettlement(ctx context.Context, claimID id.ClaimID,
	caps authz.Capabilities) (*models.Claim, error) {
	if err := authz.Require(caps, authz.CapProcessClaims); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	claim, err := s.transition(ctx, claimID,
		func(c *models.Claim) error { return c.CanAdvanceToSettlement() },
		func(c *models.Claim) { c.ApplyAdvanceToSettlement(now) },
	)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.EventSettlementAdvanced, claim, "")
	return claim, nil
}

// ApproveAssessment records the approved amount, opens the payment phase, and
// issues the settlement receipts. DateDecision set here starts the payment
// deadline clock.
func (s *Service) ApproveAssessment(ctx context.Context, claimID id.ClaimID,
	montantAccorde int64, observations string, caps authz.Capabilities) (*models.Claim, error) {
	if err := authz.Require(caps, authz.CapValidateClaims); err != nil {
		return nil, err
	}
	if montantAccorde <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "montant_accorde must be positive")
	}

	now := requestcontext.Now(ctx)
	claim, err := s.transition(ctx, claimID,
		func(c *models.Claim) error { return c.CanApproveAssessment() },
		func(c *models.Claim) { c.ApplyApproveAssessment(montantAccorde, observations, now) },
	)
	if err != nil {
		return nil, err
	}

	view, err := s.contracts.Resolve(ctx, claim.ContratRef)
	if err != nil {
		return nil, fmt.Errorf("resolve guarantees for %s: %w", claim.NumeroSinistre, err)
	}
	if _, err := s.settlement.GenerateForClaim(ctx, claim, view); err != nil {
		// The approval stands; generation is idempotent and a retry through
		// support tooling picks up where this left off.
		return nil, fmt.Errorf("generate quittances for %s: %w", claim.NumeroSinistre, err)
	}

	s.record(ctx, audit.EventAssessmentApproved, claim,
		fmt.Sprintf("%d FCFA approved", montantAccorde))
	s.logger.InfoContext(ctx, "assessment approved",
		slog.String("numero_sinistre", claim.NumeroSinistre),
		slog.Int64("montant_accorde", montantAccorde))
	return claim, nil
}

// Reject terminates a claim still under instruction. A motif is mandatory.
func (s *Service) Reject(ctx context.Context, claimID id.ClaimID, motif string,
	caps authz.Capabilities) (*models.Claim, error) {
	if err := authz.Require(caps, authz.CapValidateClaims); err != nil {
		return nil, err
	}
	if motif == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "motif_rejet is required")
	}

	now := requestcontext.Now(ctx)
	claim, err := s.transition(ctx, claimID,
		func(c *models.Claim) error { return c.CanReject() },
		func(c *models.Claim) { c.ApplyReject(motif, now) },
	)
	if err != nil {
		return nil, err
	}

	s.metrics.Rejections.Inc()
	s.record(ctx, audit.EventClaimRejected, claim, motif)
	s.publish(ctx, notify.Event{
		Type:           notify.TypeClaimRejected,
		NumeroSinistre: claim.NumeroSinistre,
		OccurredAt:     now.Format("2006-01-02T15:04:05Z07:00"),
	})
	return claim, nil
}

// Close archives a fully settled claim. Every non-cancelled quittance must be
// paid and at least one payment must have gone out; a claim whose receipts
// were all cancelled cannot be closed through this path.
func (s *Service) Close(ctx context.Context, claimID id.ClaimID,
	caps authz.Capabilities) (*models.Claim, error) {
	if err := authz.Require(caps, authz.CapCloseClaims); err != nil {
		return nil, err
	}

	current, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if current.IsLocked() {
		return nil, dErrors.Newf(dErrors.CodeLocked, "claim %s is archived", current.NumeroSinistre)
	}

	quittances, err := s.settlement.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	paid := 0
	for _, q := range quittances {
		switch q.Statut {
		case qmodels.StatusPayee:
			paid++
		case qmodels.StatusAnnulee:
		default:
			return nil, dErrors.Newf(dErrors.CodePrecondition,
				"quittance %s is %s, all receipts must be paid before closing", q.Reference, q.Statut)
		}
	}
	if paid == 0 {
		return nil, dErrors.New(dErrors.CodePrecondition,
			"at least one paid quittance is required before closing")
	}

	claim, err := s.guard.Close(ctx, claimID)
	if err != nil {
		return nil, err
	}

	s.metrics.Closed.Inc()
	s.metrics.Transitions.WithLabelValues(string(models.StatusCloture)).Inc()
	if claim.DateDecision != nil && claim.DatePaiement != nil {
		s.metrics.SettlementDays.Observe(claim.DatePaiement.Sub(*claim.DateDecision).Hours() / 24)
	}
	s.record(ctx, audit.EventClaimClosed, claim, "")
	s.publish(ctx, notify.Event{
		Type:           notify.TypeClaimClosed,
		NumeroSinistre: claim.NumeroSinistre,
		OccurredAt:     requestcontext.Now(ctx).Format("2006-01-02T15:04:05Z07:00"),
	})
	s.logger.InfoContext(ctx, "claim closed",
		slog.String("numero_sinistre", claim.NumeroSinistre))
	return claim, nil
}

// Get returns a claim dressed with its delay status.
func (s *Service) Get(ctx context.Context, claimID id.ClaimID) (*View, error) {
	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	return newView(claim, requestcontext.Now(ctx)), nil
}

// GetByNumero resolves a claim by its business number.
func (s *Service) GetByNumero(ctx context.Context, numero string) (*View, error) {
	claim, err := s.claims.FindByNumero(ctx, numero)
	if err != nil {
		return nil, err
	}
	return newView(claim, requestcontext.Now(ctx)), nil
}

// List returns every claim with its delay status. Overdue claims feed the
// work queue dashboards.
func (s *Service) List(ctx context.Context) ([]*View, error) {
	claims, err := s.claims.List(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	views := make([]*View, 0, len(claims))
	for _, claim := range claims {
		views = append(views, newView(claim, now))
	}
	return views, nil
}

// transition runs one atomic state change with the lock check ahead of the
// caller's status validation.
func (s *Service) transition(ctx context.Context, claimID id.ClaimID,
	validate func(*models.Claim) error, mutate func(*models.Claim)) (*models.Claim, error) {
	claim, err := s.claims.Execute(ctx, claimID,
		func(c *models.Claim) error {
			if c.IsLocked() {
				return dErrors.Newf(dErrors.CodeLocked, "claim %s is archived", c.NumeroSinistre)
			}
			return validate(c)
		},
		mutate,
	)
	if err != nil {
		return nil, err
	}
	s.metrics.Transitions.WithLabelValues(string(claim.Statut)).Inc()
	return claim, nil
}

func (s *Service) publish(ctx context.Context, event notify.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			slog.String("type", event.Type), slog.String("error", err.Error()))
	}
}

func (s *Service) record(ctx context.Context, action audit.AuditEvent, claim *models.Claim, detail string) {
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    string(action),
		ActorID:   requestcontext.ActorID(ctx),
		ClaimID:   claim.ID,
		Subject:   claim.NumeroSinistre,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit append failed",
			slog.String("action", string(action)), slog.String("error", err.Error()))
	}
}

// generateNumero issues a business claim number. The suffix is random rather
// than sequential so two instances never collide without coordination.
func generateNumero(year int) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("SIN-%d-%s", year, suffix)
}
