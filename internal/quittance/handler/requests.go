package handler

import (
	"strings"

	"sinistra/internal/quittance/models"
	dErrors "sinistra/pkg/domain-errors"
)

// PayRequest is the HTTP request body for POST /quittances/{quittanceID}/pay.
type PayRequest struct {
	ModePaiement      string `json:"mode_paiement"`
	NumeroTransaction string `json:"numero_transaction"`

	parsedMode models.PaymentMode
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *PayRequest) Validate() error {
	mode, err := models.ParsePaymentMode(strings.TrimSpace(r.ModePaiement))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	r.parsedMode = mode

	r.NumeroTransaction = strings.TrimSpace(r.NumeroTransaction)
	if r.NumeroTransaction == "" && mode.RequiresTransactionNumber() {
		return dErrors.Newf(dErrors.CodeValidation,
			"numero_transaction is required for %s payments", mode)
	}
	if len(r.NumeroTransaction) > 64 {
		return dErrors.New(dErrors.CodeValidation, "numero_transaction must be at most 64 characters")
	}
	return nil
}

// ParsedMode returns the validated payment mode.
func (r *PayRequest) ParsedMode() models.PaymentMode {
	return r.parsedMode
}

// CancelRequest is the HTTP request body for POST /quittances/{quittanceID}/cancel.
type CancelRequest struct {
	MotifAnnulation string `json:"motif_annulation"`
}

// Validate implements the Validatable interface.
func (r *CancelRequest) Validate() error {
	r.MotifAnnulation = strings.TrimSpace(r.MotifAnnulation)
	if r.MotifAnnulation == "" {
		return dErrors.New(dErrors.CodeValidation, "motif_annulation is required")
	}
	return nil
}
