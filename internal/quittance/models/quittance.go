package models

import (
	"fmt"
	"time"

	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
)

// QuittanceType identifies what a settlement receipt pays out.
type QuittanceType string

const (
	// TypePrincipalSansInteret pays the EMF the outstanding principal,
	// interest waived, on prevoyance-bearing contracts.
	TypePrincipalSansInteret QuittanceType = "principal_sans_interet"
	// TypeCapitalRestantDu pays the EMF the outstanding principal on
	// contracts without a prevoyance guarantee.
	TypeCapitalRestantDu QuittanceType = "capital_restant_du"
	// TypeCapitalPrevoyance pays the named beneficiary the prevoyance capital.
	TypeCapitalPrevoyance QuittanceType = "capital_prevoyance"
	// TypeIndemniteJournaliere and TypeFraisMedicaux cover per-diem and
	// medical-expense payouts on maladie claims.
	TypeIndemniteJournaliere QuittanceType = "indemnite_journaliere"
	TypeFraisMedicaux        QuittanceType = "frais_medicaux"
)

// QuittanceStatus is the receipt's own small state machine:
// en_attente → validee → payee, with annulee reachable from the first two.
type QuittanceStatus string

const (
	StatusEnAttente QuittanceStatus = "en_attente"
	StatusValidee   QuittanceStatus = "validee"
	StatusPayee     QuittanceStatus = "payee"
	StatusAnnulee   QuittanceStatus = "annulee"
)

// PaymentMode is how a paid quittance was settled.
type PaymentMode string

const (
	ModeVirement    PaymentMode = "virement"
	ModeCheque      PaymentMode = "cheque"
	ModeEspeces     PaymentMode = "especes"
	ModeMobileMoney PaymentMode = "mobile_money"
)

// ParsePaymentMode validates a payment mode coming off the wire.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case ModeVirement, ModeCheque, ModeEspeces, ModeMobileMoney:
		return PaymentMode(s), nil
	}
	return "", fmt.Errorf("unknown payment mode %q", s)
}

// RequiresTransactionNumber reports whether the mode produces a bank or
// operator reference. Cash has none and a cheque number is recorded when
// available, not mandated.
func (m PaymentMode) RequiresTransactionNumber() bool {
	return m == ModeVirement || m == ModeMobileMoney
}

// Quittance is one payable settlement receipt owned by exactly one claim.
//
// Invariants:
//   - Montant is positive, fixed at generation, never recomputed
//   - Reference is unique and stable once issued
//   - payee is reachable only from validee (separation of duties)
//   - annulee is terminal
type Quittance struct {
	ID        id.QuittanceID  `json:"id"`
	Reference string          `json:"reference"`
	ClaimID   id.ClaimID      `json:"sinistre_id"`
	Type      QuittanceType   `json:"type"`
	Statut    QuittanceStatus `json:"statut"`

	Montant      int64  `json:"montant"`
	Beneficiaire string `json:"beneficiaire"`

	DateValidation *time.Time `json:"date_validation,omitempty"`
	Valideur       id.ActorID `json:"valideur,omitempty"`

	DatePaiement      *time.Time  `json:"date_paiement,omitempty"`
	ModePaiement      PaymentMode `json:"mode_paiement,omitempty"`
	NumeroTransaction string      `json:"numero_transaction,omitempty"`

	MotifAnnulation string `json:"motif_annulation,omitempty"`
}

// NewQuittance validates and builds a freshly generated receipt.
func NewQuittance(qid id.QuittanceID, reference string, claimID id.ClaimID,
	qType QuittanceType, montant int64, beneficiaire string) (*Quittance, error) {
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "quittance reference is required")
	}
	if montant <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "quittance montant must be positive")
	}
	if beneficiaire == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "quittance beneficiaire is required")
	}
	return &Quittance{
		ID:           qid,
		Reference:    reference,
		ClaimID:      claimID,
		Type:         qType,
		Statut:       StatusEnAttente,
		Montant:      montant,
		Beneficiaire: beneficiaire,
	}, nil
}

func (q *Quittance) invalidFrom(op string, want ...QuittanceStatus) error {
	return dErrors.Newf(dErrors.CodeInvalidTransition,
		"%s requires statut %v, quittance %s is %s", op, want, q.Reference, q.Statut)
}

// CanValidate checks the en_attente → validee precondition.
func (q *Quittance) CanValidate() error {
	if q.Statut != StatusEnAttente {
		return q.invalidFrom("validate", StatusEnAttente)
	}
	return nil
}

// ApplyValidate records the validation trail. Call CanValidate first.
func (q *Quittance) ApplyValidate(valideur id.ActorID, now time.Time) {
	q.Statut = StatusValidee
	q.DateValidation = &now
	q.Valideur = valideur
}

// CanPay checks the validee → payee precondition. A quittance never goes to
// payee straight from en_attente.
func (q *Quittance) CanPay() error {
	if q.Statut != StatusValidee {
		return q.invalidFrom("pay", StatusValidee)
	}
	return nil
}

// ApplyPay records the payment trail. Call CanPay first.
func (q *Quittance) ApplyPay(mode PaymentMode, numeroTransaction string, now time.Time) {
	q.Statut = StatusPayee
	q.DatePaiement = &now
	q.ModePaiement = mode
	q.NumeroTransaction = numeroTransaction
}

// CanCancel checks that the quittance has not already been paid or cancelled.
func (q *Quittance) CanCancel() error {
	switch q.Statut {
	case StatusEnAttente, StatusValidee:
		return nil
	}
	return q.invalidFrom("cancel", StatusEnAttente, StatusValidee)
}

// ApplyCancel marks the quittance cancelled. Cancellation is terminal.
func (q *Quittance) ApplyCancel(motif string) {
	q.Statut = StatusAnnulee
	q.MotifAnnulation = motif
}
