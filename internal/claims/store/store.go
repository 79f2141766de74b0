// Package store persists claim aggregates. Implementations must make
// Execute atomic: validation and mutation run under the same per-claim lock
// so a stale status can never be double-advanced.
package store

import (
	"context"

	"sinistra/internal/claims/models"
	id "sinistra/pkg/domain"
)

// Store is the claim persistence port.
type Store interface {
	Create(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)
	FindByNumero(ctx context.Context, numero string) (*models.Claim, error)
	List(ctx context.Context) ([]*models.Claim, error)

	// Execute atomically loads the claim, runs validate, and applies mutate,
	// holding the entity lock (mutex or FOR UPDATE) across both. A validate
	// error aborts with no partial effects.
	Execute(ctx context.Context, claimID id.ClaimID,
		validate func(*models.Claim) error,
		mutate func(*models.Claim)) (*models.Claim, error)

	// SetArchiveRef records the archive artifact reference. This is the one
	// write permitted on a locked claim, and only the archive worker uses it.
	SetArchiveRef(ctx context.Context, claimID id.ClaimID, ref string) error
}
