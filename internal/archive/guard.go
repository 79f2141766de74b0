// Package archive owns closure: the terminal cloture transition, the
// est_archive lock, and generation of the archive artifact. Nothing else in
// the codebase is allowed to set the lock.
package archive

import (
	"context"
	"log/slog"

	"sinistra/internal/claims/models"
	"sinistra/internal/claims/store"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/requestcontext"
)

// Job asks the worker to render and store the artifact for a closed claim.
type Job struct {
	ClaimID id.ClaimID
	Numero  string
}

// Guard applies the terminal archive transition. Closing is synchronous;
// artifact generation is queued so a slow blob store never holds the request.
type Guard struct {
	claims store.Store
	jobs   chan<- Job
	logger *slog.Logger
}

func NewGuard(claims store.Store, jobs chan<- Job, logger *slog.Logger) *Guard {
	return &Guard{claims: claims, jobs: jobs, logger: logger}
}

// Close moves a paid claim to cloture and sets the immutability lock. The
// lock check runs before the status check inside the same atomic Execute, so
// a double close fails ClaimLocked rather than InvalidTransition.
func (g *Guard) Close(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	now := requestcontext.Now(ctx)
	claim, err := g.claims.Execute(ctx, claimID,
		func(c *models.Claim) error {
			if c.IsLocked() {
				return dErrors.Newf(dErrors.CodeLocked, "claim %s is archived", c.NumeroSinistre)
			}
			return c.CanClose()
		},
		func(c *models.Claim) { c.ApplyArchive(now) },
	)
	if err != nil {
		return nil, err
	}

	select {
	case g.jobs <- Job{ClaimID: claim.ID, Numero: claim.NumeroSinistre}:
	default:
		// Queue full. The claim is closed either way; the artifact can be
		// regenerated by replaying the job.
		g.logger.WarnContext(ctx, "archive queue full, artifact job dropped",
			slog.String("numero_sinistre", claim.NumeroSinistre))
	}
	return claim, nil
}
