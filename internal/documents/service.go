package documents

import (
	"context"
	"fmt"
	"log/slog"

	"sinistra/internal/audit"
	"sinistra/internal/authz"
	claimmodels "sinistra/internal/claims/models"
	claimstore "sinistra/internal/claims/store"
	"sinistra/internal/platform/blob"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/requestcontext"
)

type Service struct {
	docs    Store
	claims  claimstore.Store
	blobs   blob.Store
	auditor *audit.Publisher
	logger  *slog.Logger
}

func NewService(docs Store, claims claimstore.Store, blobs blob.Store,
	auditor *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{docs: docs, claims: claims, blobs: blobs, auditor: auditor, logger: logger}
}

// Add uploads a supporting piece against an open claim.
func (s *Service) Add(ctx context.Context, claimID id.ClaimID, nom, contentType string,
	data []byte, caps authz.Capabilities) (*claimmodels.Document, error) {
	if err := authz.Require(caps, authz.CapProcessClaims); err != nil {
		return nil, err
	}
	claim, err := s.guardClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	docID := id.NewDocumentID()
	key := fmt.Sprintf("claims/%s/%s/%s", claim.ID, docID, nom)
	ref, err := s.blobs.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store document blob: %w", err)
	}

	doc, err := claimmodels.NewDocument(docID, claimID, nom, contentType, ref,
		int64(len(data)), requestcontext.ActorID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		// Orphaned blob, not orphaned metadata. A cleanup sweep can collect it.
		_ = s.blobs.Delete(ctx, ref)
		return nil, err
	}

	s.record(ctx, audit.EventDocumentAdded, claim, doc.Nom)
	return doc, nil
}

// ListByClaim returns a claim's documents, oldest upload first.
func (s *Service) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*claimmodels.Document, error) {
	return s.docs.ListByClaim(ctx, claimID)
}

// Fetch returns the document metadata and blob contents.
func (s *Service) Fetch(ctx context.Context, docID id.DocumentID) (*claimmodels.Document, []byte, error) {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, doc.CheminBlob)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// Remove deletes a document from an open claim. Documents on an archived
// claim are part of the permanent record and cannot be removed.
func (s *Service) Remove(ctx context.Context, docID id.DocumentID, caps authz.Capabilities) error {
	if err := authz.Require(caps, authz.CapProcessClaims); err != nil {
		return err
	}
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return err
	}
	claim, err := s.guardClaim(ctx, doc.ClaimID)
	if err != nil {
		return err
	}

	if err := s.docs.Delete(ctx, docID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, doc.CheminBlob); err != nil {
		s.logger.WarnContext(ctx, "document blob not deleted",
			slog.String("chemin_blob", doc.CheminBlob), slog.String("error", err.Error()))
	}

	s.record(ctx, audit.EventDocumentRemoved, claim, doc.Nom)
	return nil
}

func (s *Service) guardClaim(ctx context.Context, claimID id.ClaimID) (*claimmodels.Claim, error) {
	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.IsLocked() {
		return nil, dErrors.Newf(dErrors.CodeLocked, "claim %s is archived", claim.NumeroSinistre)
	}
	return claim, nil
}

func (s *Service) record(ctx context.Context, action audit.AuditEvent, claim *claimmodels.Claim, detail string) {
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
