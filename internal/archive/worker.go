package archive

import (
	"context"
	"log/slog"

	"sinistra/internal/claims/store"
)

// ArtifactGenerator renders the permanent record of a closed claim and
// returns a stable reference to where it was stored.
type ArtifactGenerator interface {
	Generate(ctx context.Context, job Job) (string, error)
}

// Worker drains the archive queue. Artifact failures are logged and skipped;
// the claim stays closed and the job can be replayed.
type Worker struct {
	claims    store.Store
	generator ArtifactGenerator
	jobs      <-chan Job
	logger    *slog.Logger
}

func NewWorker(claims store.Store, generator ArtifactGenerator, jobs <-chan Job, logger *slog.Logger) *Worker {
	return &Worker{claims: claims, generator: generator, jobs: jobs, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-w.jobs:
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	ref, err := w.generator.Generate(ctx, job)
	if err != nil {
		w.logger.ErrorContext(ctx, "archive artifact generation failed",
			slog.String("numero_sinistre", job.Numero), slog.String("error", err.Error()))
		return
	}
	if err := w.claims.SetArchiveRef(ctx, job.ClaimID, ref); err != nil {
		w.logger.ErrorContext(ctx, "archive ref not recorded",
			slog.String("numero_sinistre", job.Numero), slog.String("error", err.Error()))
		return
	}
	w.logger.InfoContext(ctx, "claim archived",
		slog.String("numero_sinistre", job.Numero), slog.String("fichier_archive", ref))
}
