package handler

import (
	"time"

	"sinistra/internal/audit"
	"sinistra/internal/claims/models"
	"sinistra/internal/claims/service"
)

// ClaimResponse is the HTTP representation of a claim.
type ClaimResponse struct {
	ID             string `json:"id"`
	NumeroSinistre string `json:"numero_sinistre"`
	ContratRef     struct {
		Variant    string `json:"variant"`
		ContractID string `json:"contract_id"`
	} `json:"contrat_ref"`
	TypeSinistre string `json:"type_sinistre"`
	Statut       string `json:"statut"`

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

	Delai         *DelaiResponse `json:"delai,omitempty"`
	EstModifiable bool           `json:"est_modifiable"`
}

// DelaiResponse is the payment deadline portion of the response.
type DelaiResponse struct {
	DateDebut     time.Time `json:"date_debut"`
	DateEcheance  time.Time `json:"date_echeance"`
	JoursRestants int       `json:"jours_restants"`
	Depasse       bool      `json:"depasse"`
	Urgence       string    `json:"urgence"`
	Progression   int       `json:"progression"`
}

// FromClaim converts a bare claim, without the read-side delay projection.
func FromClaim(claim *models.Claim) *ClaimResponse {
	resp := &ClaimResponse{
		ID:                     claim.ID.String(),
		NumeroSinistre:         claim.NumeroSinistre,
		TypeSinistre:           string(claim.Type),
		Statut:                 string(claim.Statut),
		DateSinistre:           claim.DateSinistre,
		DateDeclaration:        claim.DateDeclaration,
		DateReceptionDocuments: claim.DateReceptionDocuments,
		DateDecision:           claim.DateDecision,
		DateTraitement:         claim.DateTraitement,
		DatePaiement:           claim.DatePaiement,
		DateCloture:            claim.DateCloture,
		CapitalRestantDu:       claim.CapitalRestantDu,
		MontantReclame:         claim.MontantReclame,
		MontantIndemnisation:   claim.MontantIndemnisation,
		Observations:           claim.Observations,
		MotifRejet:             claim.MotifRejet,
		EstArchive:             claim.EstArchive,
		FichierArchive:         claim.FichierArchive,
		EstModifiable:          !claim.IsLocked(),
	}
	resp.ContratRef.Variant = string(claim.ContratRef.Variant)
	resp.ContratRef.ContractID = claim.ContratRef.ContractID.String()
	return resp
}

// FromView converts a claim view including its delay status.
func FromView(view *service.View) *ClaimResponse {
	resp := FromClaim(view.Claim)
	resp.EstModifiable = view.EstModifiable
	if view.Delai != nil {
		resp.Delai = &DelaiResponse{
			DateDebut:     view.Delai.DateDebut,
			DateEcheance:  view.Delai.DateEcheance,
			JoursRestants: view.Delai.JoursRestants,
			Depasse:       view.Delai.Depasse,
			Urgence:       string(view.Delai.Urgence),
			Progression:   view.Delai.Progression,
		}
	}
	return resp
}

// FromViews converts a list of claim views.
func FromViews(views []*service.View) []*ClaimResponse {
	out := make([]*ClaimResponse, 0, len(views))
	for _, view := range views {
		out = append(out, FromView(view))
	}
	return out
}

// EventResponse is one audit trail entry.
type EventResponse struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
}

// FromEvents converts the audit trail.
func FromEvents(events []audit.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, EventResponse{
			Category:  string(event.Category),
			Timestamp: event.Timestamp,
			Action:    event.Action,
			ActorID:   string(event.ActorID),
			Subject:   event.Subject,
			Detail:    event.Detail,
		})
	}
	return out
}
