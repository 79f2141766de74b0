package handler

import (
	"time"

	"sinistra/internal/quittance/models"
)

// QuittanceResponse is the HTTP representation of a settlement receipt.
type QuittanceResponse struct {
	ID         string `json:"id"`
	Reference  string `json:"reference"`
	SinistreID string `json:"sinistre_id"`
	Type       string `json:"type"`
	Statut     string `json:"statut"`

	Montant      int64  `json:"montant"`
	Beneficiaire string `json:"beneficiaire"`

	DateValidation *time.Time `json:"date_validation,omitempty"`
	Valideur       string     `json:"valideur,omitempty"`

	DatePaiement      *time.Time `json:"date_paiement,omitempty"`
	ModePaiement      string     `json:"mode_paiement,omitempty"`
	NumeroTransaction string     `json:"numero_transaction,omitempty"`

	MotifAnnulation string `json:"motif_annulation,omitempty"`
}

// FromQuittance converts a receipt to its HTTP shape.
func FromQuittance(q *models.Quittance) *QuittanceResponse {
	return &QuittanceResponse{
		ID:                q.ID.String(),
		Reference:         q.Reference,
		SinistreID:        q.ClaimID.String(),
		Type:              string(q.Type),
		Statut:            string(q.Statut),
		Montant:           q.Montant,
		Beneficiaire:      q.Beneficiaire,
		DateValidation:    q.DateValidation,
		Valideur:          string(q.Valideur),
		DatePaiement:      q.DatePaiement,
		ModePaiement:      string(q.ModePaiement),
		NumeroTransaction: q.NumeroTransaction,
		MotifAnnulation:   q.MotifAnnulation,
	}
}

// FromQuittances converts a list of receipts.
func FromQuittances(quittances []*models.Quittance) []*QuittanceResponse {
	out := make([]*QuittanceResponse, 0, len(quittances))
	for _, q := range quittances {
		out = append(out, FromQuittance(q))
	}
	return out
}
