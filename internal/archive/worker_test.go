package archive

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinistra/internal/claims/models"
	"sinistra/internal/claims/store"
	"sinistra/internal/contracts"
	"sinistra/internal/platform/blob"
	qmodels "sinistra/internal/quittance/models"
	qstore "sinistra/internal/quittance/store"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/requestcontext"
)

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func seedClosedClaim(t *testing.T, claims *store.InMemory) *models.Claim {
	t.Helper()
	ref := contracts.Ref{Variant: contracts.VariantCreditAgricole, ContractID: id.NewContractID()}
	claim, err := models.NewClaim(id.NewClaimID(), "SIN-2024-ARC001", ref,
		models.ClaimTypeDeces, baseTime.AddDate(0, 0, -30), 250_000, nil, baseTime)
	require.NoError(t, err)
	claim.ApplyStartInstruction(baseTime)
	claim.ApplyAdvanceToSettlement(baseTime)
	claim.ApplyApproveAssessment(250_000, "", baseTime)
	claim.ApplyMarkPaid(baseTime)
	require.NoError(t, claims.Create(context.Background(), claim))
	return claim
}

func TestGuardClose(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	claims := store.NewInMemory()
	jobs := make(chan Job, 1)
	guard := NewGuard(claims, jobs, logger)
	ctx := requestcontext.WithTime(context.Background(), baseTime)

	claim := seedClosedClaim(t, claims)

	closed, err := guard.Close(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCloture, closed.Statut)
	assert.True(t, closed.EstArchive)

	t.Run("second close fails locked", func(t *testing.T) {
		_, err := guard.Close(ctx, claim.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeLocked))
	})

	t.Run("job carries the claim identity", func(t *testing.T) {
		select {
		case job := <-jobs:
			assert.Equal(t, claim.ID, job.ClaimID)
			assert.Equal(t, "SIN-2024-ARC001", job.Numero)
		default:
			t.Fatal("expected an archive job")
		}
	})
}

func TestGuardCloseRequiresPaidStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	claims := store.NewInMemory()
	guard := NewGuard(claims, make(chan Job, 1), logger)
	ctx := requestcontext.WithTime(context.Background(), baseTime)

	ref := contracts.Ref{Variant: contracts.VariantCreditStock, ContractID: id.NewContractID()}
	claim, err := models.NewClaim(id.NewClaimID(), "SIN-2024-ARC002", ref,
		models.ClaimTypeIAD, baseTime.AddDate(0, 0, -3), 80_000, nil, baseTime)
	require.NoError(t, err)
	require.NoError(t, claims.Create(ctx, claim))

	_, err = guard.Close(ctx, claim.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestWorkerGeneratesArtifactAndRecordsRef(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	claims := store.NewInMemory()
	quittances := qstore.NewInMemory()
	blobs := blob.NewInMemory()
	ctx := context.Background()

	claim := seedClosedClaim(t, claims)
	q, err := qmodels.NewQuittance(id.NewQuittanceID(), "SIN-2024-ARC001-Q1", claim.ID,
		qmodels.TypeCapitalRestantDu, 250_000, "EMF Agricole")
	require.NoError(t, err)
	require.NoError(t, quittances.CreateBatch(ctx, []*qmodels.Quittance{q}))

	_, err = claims.Execute(ctx, claim.ID,
		func(c *models.Claim) error { return nil },
		func(c *models.Claim) { c.ApplyArchive(baseTime) })
	require.NoError(t, err)

	jobs := make(chan Job, 1)
	worker := NewWorker(claims, NewJSONArtifact(claims, quittances, blobs), jobs, logger)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = worker.Run(runCtx) }()

	jobs <- Job{ClaimID: claim.ID, Numero: claim.NumeroSinistre}

	ref := "archives/2024/SIN-2024-ARC001.json"
	require.Eventually(t, func() bool {
		archived, err := claims.FindByID(ctx, claim.ID)
		return err == nil && archived.FichierArchive == ref
	}, time.Second, 10*time.Millisecond)

	raw, err := blobs.Get(ctx, ref)
	require.NoError(t, err)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Contains(t, payload, "sinistre")
	assert.Contains(t, payload, "quittances")
}
