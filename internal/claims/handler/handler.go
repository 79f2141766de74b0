// Package handler wires the claim lifecycle endpoints. Handlers stay thin:
// decode, pull identity and capabilities off the context, delegate, encode.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sinistra/internal/audit"
	"sinistra/internal/authz"
	"sinistra/internal/claims/models"
	"sinistra/internal/claims/service"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/platform/httputil"
	"sinistra/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/claims-mocks.go -package=mocks

// Service defines the lifecycle operations the HTTP layer depends on.
type Service interface {
	Declare(ctx context.Context, input service.DeclareInput, caps authz.Capabilities) (*models.Claim, error)
	StartInstruction(ctx context.Context, claimID id.ClaimID, caps authz.Capabilities) (*models.Claim, error)
	AdvanceToSettlement(ctx context.Context, claimID id.ClaimID, caps authz.Capabilities) (*models.Claim, error)
	ApproveAssessment(ctx context.Context, claimID id.ClaimID, montantAccorde int64,
		observations string, caps authz.Capabilities) (*models.Claim, error)
	Reject(ctx context.Context, claimID id.ClaimID, motif string, caps authz.Capabilities) (*models.Claim, error)
	Close(ctx context.Context, claimID id.ClaimID, caps authz.Capabilities) (*models.Claim, error)
	Get(ctx context.Context, claimID id.ClaimID) (*service.View, error)
	GetByNumero(ctx context.Context, numero string) (*service.View, error)
	List(ctx context.Context) ([]*service.View, error)
}

// AuditReader exposes the per-claim audit trail. Satisfied by audit.Publisher.
type AuditReader interface {
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]audit.Event, error)
}

type Handler struct {
	service Service
	audits  AuditReader
	logger  *slog.Logger
}

func New(service Service, audits AuditReader, logger *slog.Logger) *Handler {
	return &Handler{service: service, audits: audits, logger: logger}
}

// Register mounts claim endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/claims", h.HandleDeclare)
	r.Get("/claims", h.HandleList)
	r.Get("/claims/{claimID}", h.HandleGet)
	r.Get("/claims/numero/{numero}", h.HandleGetByNumero)
	r.Get("/claims/{claimID}/events", h.HandleEvents)
	r.Post("/claims/{claimID}/instruction", h.HandleStartInstruction)
	r.Post("/claims/{claimID}/settlement", h.HandleAdvanceToSettlement)
	r.Post("/claims/{claimID}/approve", h.HandleApprove)
	r.Post("/claims/{claimID}/reject", h.HandleReject)
	r.Post("/claims/{claimID}/close", h.HandleClose)
}

func claimIDFromURL(r *http.Request) (id.ClaimID, error) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		return id.ClaimID{}, dErrors.New(dErrors.CodeBadRequest, "invalid claim id")
	}
	return claimID, nil
}

// HandleDeclare handles POST /claims.
func (h *Handler) HandleDeclare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[DeclareRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	claim, err := h.service.Declare(ctx, req.ToInput(), authz.FromContext(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "claim declaration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim declared",
		"request_id", requestID,
		"numero_sinistre", claim.NumeroSinistre,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromClaim(claim))
}

// HandleList handles GET /claims.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromViews(views))
}

// HandleGet handles GET /claims/{claimID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, err := claimIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Get(ctx, claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

// HandleGetByNumero handles GET /claims/numero/{numero}.
func (h *Handler) HandleGetByNumero(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.GetByNumero(ctx, chi.URLParam(r, "numero"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

// HandleEvents handles GET /claims/{claimID}/events.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, err := claimIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.audits.ListByClaim(ctx, claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleStartInstruction handles POST /claims/{claimID}/instruction.
func (h *Handler) HandleStartInstruction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start instruction", h.service.StartInstruction)
}

// HandleAdvanceToSettlement handles POST /claims/{claimID}/settlement.
func (h *Handler) HandleAdvanceToSettlement(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "advance to settlement", h.service.AdvanceToSettlement)
}

// HandleClose handles POST /claims/{claimID}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "close", h.service.Close)
}

// transition factors the body-less lifecycle endpoints.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string,
	apply func(context.Context, id.ClaimID, authz.Capabilities) (*models.Claim, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := claimIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := apply(ctx, claimID, authz.FromContext(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "claim transition refused",
			"request_id", requestID,
			"operation", op,
			"claim_id", claimID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaim(claim))
}

// HandleApprove handles POST /claims/{claimID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := claimIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	claim, err := h.service.ApproveAssessment(ctx, claimID, req.MontantAccorde,
		req.Observations, authz.FromContext(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "assessment approval failed",
			"request_id", requestID,
			"claim_id", claimID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaim(claim))
}

// HandleReject handles POST /claims/{claimID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := claimIDFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	claim, err := h.service.Reject(ctx, claimID, req.MotifRejet, authz.FromContext(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "claim rejection refused",
			"request_id", requestID,
			"claim_id", claimID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaim(claim))
}
