// Package documents manages supporting-piece metadata and the blob-backed
// upload flow. Every mutation is gated on the owning claim's archive lock.
package documents

import (
	"context"

	"sinistra/internal/claims/models"
	id "sinistra/pkg/domain"
)

// Store persists document metadata.
type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
}
