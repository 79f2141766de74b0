// Package handler wires the settlement receipt endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sinistra/internal/authz"
	"sinistra/internal/quittance/models"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/platform/httputil"
	"sinistra/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/quittance-mocks.go -package=mocks

// Service defines the settlement operations the HTTP layer depends on.
type Service interface {
	Get(ctx context.Context, quittanceID id.QuittanceID) (*models.Quittance, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Quittance, error)
	Validate(ctx context.Context, quittanceID id.QuittanceID, caps authz.Capabilities) (*models.Quittance, error)
	Pay(ctx context.Context, quittanceID id.QuittanceID, mode models.PaymentMode,
		numeroTransaction string, caps authz.Capabilities) (*models.Quittance, error)
	Cancel(ctx context.Context, quittanceID id.QuittanceID, motif string,
		caps authz.Capabilities) (*models.Quittance, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts quittance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/claims/{claimID}/quittances", h.HandleListByClaim)
	r.Get("/quittances/{quittanceID}", h.HandleGet)
	r.Post("/quittances/{quittanceID}/validate", h.HandleValidate)
	r.Post("/quittances/{quittanceID}/pay", h.HandlePay)
	r.Post("/quittances/{quittanceID}/cancel", h.HandleCancel)
}

func quittanceIDFromURL(r *http.Request) (id.QuittanceID, error) {
	quittanceID, err := id.ParseQuittanceID(chi.URLParam(r, "quittanceID"))
	if err != nil {
		return id.QuittanceID{}, dErrors.New(dErrors.CodeBadRequest, "invalid quittance id")
	}
	return quittanceID, nil
}

// HandleListByClaim handles GET /claims/{claimID}/quittances.
func (h *Handler) HandleListByClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid claim id"))
		return
	}
	quittances, err := h.service.ListByClaim(ctx, claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromQuittances(quittances))
}

// HandleGet handles GET /quittances/{quittanceID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quittanceID, err := quittanceIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q, err := h.service.Get(ctx, quittanceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromQuittance(q))
}

// HandleValidate handles POST /quittances/{quittanceID}/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quittanceID, err := quittanceIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	q, err := h.service.Validate(ctx, quittanceID, authz.FromContext(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "quittance validation refused",
			"request_id", requestcontext.RequestID(ctx),
			"quittance_id", quittanceID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromQuittance(q))
}

// HandlePay handles POST /quittances/{quittanceID}/pay.
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	quittanceID, err := quittanceIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[PayRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	q, err := h.service.Pay(ctx, quittanceID, req.ParsedMode(), req.NumeroTransaction, authz.FromContext(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "quittance payment failed",
			"request_id", requestID,
			"quittance_id", quittanceID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "quittance paid",
		"request_id", requestID,
		"reference", q.Reference,
		"mode_paiement", string(q.ModePaiement),
	)
	httputil.WriteJSON(w, http.StatusOK, FromQuittance(q))
}

// HandleCancel handles POST /quittances/{quittanceID}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	quittanceID, err := quittanceIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CancelRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	q, err := h.service.Cancel(ctx, quittanceID, req.MotifAnnulation, authz.FromContext(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "quittance cancellation refused",
			"request_id", requestID,
			"quittance_id", quittanceID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromQuittance(q))
}
