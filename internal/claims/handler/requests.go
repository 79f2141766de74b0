package handler

import (
	"strings"

	"sinistra/internal/claims/models"
	"sinistra/internal/claims/service"
	"sinistra/internal/contracts"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
)

// DeclareRequest is the HTTP request body for POST /claims.
type DeclareRequest struct {
	NumeroSinistre string `json:"numero_sinistre,omitempty"`
	ContratRef     struct {
		Variant    string `json:"variant"`
		ContractID string `json:"contract_id"`
	} `json:"contrat_ref"`
	TypeSinistre   string `json:"type_sinistre"`
	DateSinistre   string `json:"date_sinistre"`
	MontantReclame *int64 `json:"montant_reclame,omitempty"`

	// Parsed values (populated by Validate)
	parsedRef  contracts.Ref
	parsedType models.ClaimType
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DeclareRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.TypeSinistre = strings.TrimSpace(r.TypeSinistre)
	if r.TypeSinistre == "" {
		return dErrors.New(dErrors.CodeValidation, "type_sinistre is required")
	}
	claimType, err := models.ParseClaimType(r.TypeSinistre)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	r.parsedType = claimType

	variant, err := contracts.ParseVariant(strings.TrimSpace(r.ContratRef.Variant))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	contractID, err := id.ParseContractID(strings.TrimSpace(r.ContratRef.ContractID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "invalid contrat_ref.contract_id")
	}
	r.parsedRef = contracts.Ref{Variant: variant, ContractID: contractID}

	r.DateSinistre = strings.TrimSpace(r.DateSinistre)
	if r.DateSinistre == "" {
		return dErrors.New(dErrors.CodeValidation, "date_sinistre is required")
	}
	if r.MontantReclame != nil && *r.MontantReclame <= 0 {
		return dErrors.New(dErrors.CodeValidation, "montant_reclame must be positive")
	}
	return nil
}

// ToInput converts the validated request into the service input.
func (r *DeclareRequest) ToInput() service.DeclareInput {
	return service.DeclareInput{
		NumeroSinistre: strings.TrimSpace(r.NumeroSinistre),
		ContratRef:     r.parsedRef,
		Type:           r.parsedType,
		DateSinistre:   r.DateSinistre,
		MontantReclame: r.MontantReclame,
	}
}

// ApproveRequest is the HTTP request body for POST /claims/{claimID}/approve.
type ApproveRequest struct {
	MontantAccorde int64  `json:"montant_accorde"`
	Observations   string `json:"observations,omitempty"`
}

// Validate implements the Validatable interface.
func (r *ApproveRequest) Validate() error {
	if r.MontantAccorde <= 0 {
		return dErrors.New(dErrors.CodeValidation, "montant_accorde must be positive")
	}
	if len(r.Observations) > 2000 {
		return dErrors.New(dErrors.CodeValidation, "observations must be at most 2000 characters")
	}
	return nil
}

// RejectRequest is the HTTP request body for POST /claims/{claimID}/reject.
type RejectRequest struct {
	MotifRejet string `json:"motif_rejet"`
}

// Validate implements the Validatable interface.
func (r *RejectRequest) Validate() error {
	r.MotifRejet = strings.TrimSpace(r.MotifRejet)
	if r.MotifRejet == "" {
		return dErrors.New(dErrors.CodeValidation, "motif_rejet is required")
	}
	return nil
}
