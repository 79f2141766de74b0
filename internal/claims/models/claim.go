package models

import (
	"fmt"
	"time"

	"sinistra/internal/contracts"
	"sinistra/internal/sla"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
)

// ClaimType is the declared loss event category.
type ClaimType string

const (
	ClaimTypeDeces         ClaimType = "deces"
	ClaimTypeIAD           ClaimType = "iad"
	ClaimTypePerteEmploi   ClaimType = "perte_emploi"
	ClaimTypePerteActivite ClaimType = "perte_activite"
	ClaimTypeMaladie       ClaimType = "maladie"
)

// ParseClaimType validates a claim type coming off the wire.
func ParseClaimType(s string) (ClaimType, error) {
	switch ClaimType(s) {
	case ClaimTypeDeces, ClaimTypeIAD, ClaimTypePerteEmploi, ClaimTypePerteActivite, ClaimTypeMaladie:
		return ClaimType(s), nil
	}
	return "", fmt.Errorf("unknown claim type %q", s)
}

// ClaimStatus is the lifecycle state machine value.
type ClaimStatus string

const (
	StatusEnCours       ClaimStatus = "en_cours"
	StatusEnInstruction ClaimStatus = "en_instruction"
	StatusEnReglement   ClaimStatus = "en_reglement"
	StatusEnPaiement    ClaimStatus = "en_paiement"
	StatusPaye          ClaimStatus = "paye"
	StatusRejete        ClaimStatus = "rejete"
	StatusCloture       ClaimStatus = "cloture"
)

// transitions is the complete status graph. No other edge is valid.
var transitions = map[ClaimStatus][]ClaimStatus{
	StatusEnCours:       {StatusEnInstruction, StatusRejete},
	StatusEnInstruction: {StatusEnReglement, StatusRejete},
	StatusEnReglement:   {StatusEnPaiement, StatusRejete},
	StatusEnPaiement:    {StatusPaye},
	StatusPaye:          {StatusCloture},
	StatusRejete:        {},
	StatusCloture:       {},
}

// CanTransitionTo reports whether the status graph contains the edge.
func (s ClaimStatus) CanTransitionTo(target ClaimStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transition.
func (s ClaimStatus) IsTerminal() bool { return len(transitions[s]) == 0 }

// Claim is the aggregate root for one declared loss event.
//
// Invariants:
//   - Statut moves only along the transition graph above
//   - Every date field is set once, by the transition that produces it
//   - CapitalRestantDu is snapshotted at declaration and never recomputed
//   - Once EstArchive is true nothing on the aggregate mutates (ClaimLocked)
//
// The archive lock is enforced at the service layer before the state check,
// so a mutation against a closed claim fails ClaimLocked rather than
// InvalidTransition.
type Claim struct {
	ID             id.ClaimID    `json:"id"`
	NumeroSinistre string        `json:"numero_sinistre"`
	ContratRef     contracts.Ref `json:"contrat_ref"`
	Type           ClaimType     `json:"type_sinistre"`
	Statut         ClaimStatus   `json:"statut"`

	DateSinistre           time.Time  `json:"date_sinistre"`
	DateDeclaration        time.Time  `json:"date_declaration"`
	DateReceptionDocuments *time.Time `json:"date_reception_documents,omitempty"`
	DateDecision           *time.Time `json:"date_decision,omitempty"`
	DateTraitement         *time.Time `json:"date_traitement,omitempty"`
	DatePaiement           *time.Time `json:"date_paiement,omitempty"`
	DateCloture            *time.Time `json:"date_cloture,omitempty"`

	CapitalRestantDu     int64  `json:"capital_restant_du"`
	MontantReclame       *int64 `json:"montant_reclame,omitempty"`
	MontantIndemnisation *int64 `json:"montant_indemnisation,omitempty"`

	Observations string `json:"observations,omitempty"`
	MotifRejet   string `json:"motif_rejet,omitempty"`

	EstArchive     bool   `json:"est_archive"`
	FichierArchive string `json:"fichier_archive,omitempty"`
}

// NewClaim validates and builds a freshly declared claim.
func NewClaim(claimID id.ClaimID, numero string, ref contracts.Ref, claimType ClaimType,
	dateSinistre time.Time, capitalRestantDu int64, montantReclame *int64, now time.Time) (*Claim, error) {
	if numero == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "numero_sinistre is required")
	}
	if ref.ContractID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "contrat_ref is required")
	}
	if dateSinistre.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date_sinistre is required")
	}
	if dateSinistre.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "date_sinistre cannot be in the future")
	}
	if capitalRestantDu <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "capital_restant_du must be positive")
	}
	if montantReclame != nil && *montantReclame <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "montant_reclame must be positive")
	}
	return &Claim{
		ID:               claimID,
		NumeroSinistre:   numero,
		ContratRef:       ref,
		Type:             claimType,
		Statut:           StatusEnCours,
		DateSinistre:     dateSinistre,
		DateDeclaration:  now,
		CapitalRestantDu: capitalRestantDu,
		MontantReclame:   montantReclame,
	}, nil
}

// IsLocked is the single source of truth for the terminal archive lock.
func (c *Claim) IsLocked() bool { return c.EstArchive }

func (c *Claim) invalidFrom(op string, want ...ClaimStatus) error {
	return dErrors.Newf(dErrors.CodeInvalidTransition,
		"%s requires statut %v, claim %s is %s", op, want, c.NumeroSinistre, c.Statut)
}

// CanStartInstruction checks the en_cours → en_instruction precondition.
func (c *Claim) CanStartInstruction() error {
	if c.Statut != StatusEnCours {
		return c.invalidFrom("start instruction", StatusEnCours)
	}
	return nil
}

// ApplyStartInstruction moves the claim into instruction and records the
// document-reception date. Call CanStartInstruction first.
func (c *Claim) ApplyStartInstruction(now time.Time) {
	c.Statut = StatusEnInstruction
	c.DateReceptionDocuments = &now
}

// CanAdvanceToSettlement checks the en_instruction → en_reglement precondition.
func (c *Claim) CanAdvanceToSettlement() error {
	if c.Statut != StatusEnInstruction {
		return c.invalidFrom("advance to settlement", StatusEnInstruction)
	}
	return nil
}

// ApplyAdvanceToSettlement moves the claim into settlement.
func (c *Claim) ApplyAdvanceToSettlement(now time.Time) {
	c.Statut = StatusEnReglement
	c.DateTraitement = &now
}

// CanApproveAssessment checks the en_reglement → en_paiement precondition.
// Assessment approval is the single transition into payment.
func (c *Claim) CanApproveAssessment() error {
	if c.Statut != StatusEnReglement {
		return c.invalidFrom("approve assessment", StatusEnReglement)
	}
	return nil
}

// ApplyApproveAssessment records the approved amount and opens the payment
// phase. DateDecision doubles as the SLA window start.
func (c *Claim) ApplyApproveAssessment(montantAccorde int64, observations string, now time.Time) {
	c.Statut = StatusEnPaiement
	c.MontantIndemnisation = &montantAccorde
	c.Observations = observations
	c.DateDecision = &now
}

// CanReject checks that the claim is still in an instructable state.
func (c *Claim) CanReject() error {
	switch c.Statut {
	case StatusEnCours, StatusEnInstruction, StatusEnReglement:
		return nil
	}
	return c.invalidFrom("reject", StatusEnCours, StatusEnInstruction, StatusEnReglement)
}

// ApplyReject marks the claim rejected. Rejection is terminal.
func (c *Claim) ApplyReject(motif string, now time.Time) {
	c.Statut = StatusRejete
	c.MotifRejet = motif
	c.DateDecision = &now
}

// CanMarkPaid checks the en_paiement → paye precondition. The settlement
// engine drives this transition when the last payable quittance is paid.
func (c *Claim) CanMarkPaid() error {
	if c.Statut != StatusEnPaiement {
		return c.invalidFrom("mark paid", StatusEnPaiement)
	}
	return nil
}

// ApplyMarkPaid records full settlement of the claim.
func (c *Claim) ApplyMarkPaid(now time.Time) {
	c.Statut = StatusPaye
	c.DatePaiement = &now
}

// CanClose checks the paye → cloture precondition. Quittance completeness is
// checked by the lifecycle service; this only guards the status edge.
func (c *Claim) CanClose() error {
	if c.Statut != StatusPaye {
		return c.invalidFrom("close", StatusPaye)
	}
	return nil
}

// ApplyArchive applies the terminal lock. Only the archive guard calls this.
func (c *Claim) ApplyArchive(now time.Time) {
	c.Statut = StatusCloture
	c.EstArchive = true
	c.DateCloture = &now
}

// DelayWindow derives the payment SLA window from the claim's timestamps.
// It exists once the claim has entered en_paiement.
func (c *Claim) DelayWindow() (sla.Window, bool) {
	if c.DateDecision == nil {
		return sla.Window{}, false
	}
	switch c.Statut {
	case StatusEnPaiement, StatusPaye, StatusCloture:
		return sla.NewWindow(*c.DateDecision), true
	}
	return sla.Window{}, false
}
