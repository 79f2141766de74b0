package documents

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sinistra/internal/authz"
	"sinistra/internal/claims/models"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/platform/httputil"
	"sinistra/pkg/requestcontext"
)

// Handler wires the supporting-piece endpoints straight onto the service.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/claims/{claimID}/documents", h.HandleAdd)
	r.Get("/claims/{claimID}/documents", h.HandleList)
	r.Get("/documents/{documentID}", h.HandleDownload)
	r.Delete("/documents/{documentID}", h.HandleRemove)
}

// AddRequest is the HTTP request body for POST /claims/{claimID}/documents.
// Content travels base64-encoded; partner back-offices post small PDFs and
// scans, not streams.
type AddRequest struct {
	Nom           string `json:"nom"`
	ContentType   string `json:"content_type"`
	ContenuBase64 string `json:"contenu_base64"`

	decoded []byte
}

// Validate implements the Validatable interface.
func (r *AddRequest) Validate() error {
	r.Nom = strings.TrimSpace(r.Nom)
	if r.Nom == "" {
		return dErrors.New(dErrors.CodeValidation, "nom is required")
	}
	if strings.ContainsAny(r.Nom, "/\\") {
		return dErrors.New(dErrors.CodeValidation, "nom must not contain path separators")
	}
	if r.ContentType == "" {
		r.ContentType = "application/octet-stream"
	}
	decoded, err := base64.StdEncoding.DecodeString(r.ContenuBase64)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "contenu_base64 is not valid base64")
	}
	if len(decoded) == 0 {
		return dErrors.New(dErrors.CodeValidation, "contenu_base64 is required")
	}
	const maxSize = 10 << 20
	if len(decoded) > maxSize {
		return dErrors.New(dErrors.CodeValidation, "document exceeds the 10 MiB limit")
	}
	r.decoded = decoded
	return nil
}

// DocumentResponse is the HTTP representation of document metadata.
type DocumentResponse struct {
	ID          string `json:"id"`
	SinistreID  string `json:"sinistre_id"`
	Nom         string `json:"nom"`
	ContentType string `json:"content_type"`
	TailleBytes int64  `json:"taille_bytes"`
	UploadedBy  string `json:"uploaded_by"`
	UploadedAt  string `json:"uploaded_at"`
}

func fromDocument(doc *models.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          doc.ID.String(),
		SinistreID:  doc.ClaimID.String(),
		Nom:         doc.Nom,
		ContentType: doc.ContentType,
		TailleBytes: doc.TailleBytes,
		UploadedBy:  string(doc.UploadedBy),
		UploadedAt:  doc.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleAdd handles POST /claims/{claimID}/documents.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid claim id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.Add(ctx, claimID, req.Nom, req.ContentType, req.decoded, authz.FromContext(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "document upload refused",
			"request_id", requestID,
			"claim_id", claimID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromDocument(doc))
}

// HandleList handles GET /claims/{claimID}/documents.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid claim id"))
		return
	}
	docs, err := h.service.ListByClaim(ctx, claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleDownload handles GET /documents/{documentID}.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}
	doc, data, err := h.service.Fetch(ctx, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Nom+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleRemove handles DELETE /documents/{documentID}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}
	if err := h.service.Remove(ctx, docID, authz.FromContext(ctx)); err != nil {
		h.logger.WarnContext(ctx, "document removal refused",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", docID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
