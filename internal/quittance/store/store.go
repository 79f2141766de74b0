// Package store persists settlement receipts. Execute serializes validate
// and pay per quittance id, mirroring the claim store's contract.
package store

import (
	"context"

	"sinistra/internal/quittance/models"
	id "sinistra/pkg/domain"
)

// Store is the quittance persistence port.
type Store interface {
	// CreateBatch inserts the generated receipts of one claim atomically.
	CreateBatch(ctx context.Context, quittances []*models.Quittance) error
	FindByID(ctx context.Context, quittanceID id.QuittanceID) (*models.Quittance, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Quittance, error)

	// Execute atomically loads the quittance, runs validate, and applies
	// mutate under the entity lock. A validate error aborts cleanly.
	Execute(ctx context.Context, quittanceID id.QuittanceID,
		validate func(*models.Quittance) error,
		mutate func(*models.Quittance)) (*models.Quittance, error)
}
