package documents

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinistra/internal/audit"
	"sinistra/internal/authz"
	claimmodels "sinistra/internal/claims/models"
	claimstore "sinistra/internal/claims/store"
	"sinistra/internal/contracts"
	"sinistra/internal/platform/blob"
	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/requestcontext"
	"sinistra/pkg/testutil"
)

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	claims *claimstore.InMemory
	blobs  *blob.InMemory
	svc    *Service
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	claims := claimstore.NewInMemory()
	blobs := blob.NewInMemory()
	svc := NewService(NewInMemory(), claims, blobs, audit.NewPublisher(audit.NewInMemory()), logger)

	ctx := requestcontext.WithTime(context.Background(), baseTime)
	ctx = requestcontext.WithActorID(ctx, id.ActorID("agent-1"))
	return &fixture{claims: claims, blobs: blobs, svc: svc, ctx: ctx}
}

func (f *fixture) seedClaim(t *testing.T, archived bool) *claimmodels.Claim {
	t.Helper()
	ref := contracts.Ref{Variant: contracts.VariantCreditIndividuel, ContractID: id.NewContractID()}
	claim, err := claimmodels.NewClaim(id.NewClaimID(), "SIN-2024-DOC001", ref,
		claimmodels.ClaimTypeMaladie, baseTime.AddDate(0, 0, -5), 100_000, nil, baseTime)
	require.NoError(t, err)
	if archived {
		claim.ApplyArchive(baseTime)
	}
	require.NoError(t, f.claims.Create(f.ctx, claim))
	return claim
}

func TestAddAndFetch(t *testing.T) {
	f := newFixture(t)
	claim := f.seedClaim(t, false)

	content := []byte("%PDF-1.4 certificat de deces")
	doc, err := f.svc.Add(f.ctx, claim.ID, "certificat.pdf", "application/pdf",
		content, authz.AdminCapabilities())
	require.NoError(t, err)

	assert.Equal(t, "certificat.pdf", doc.Nom)
	assert.EqualValues(t, len(content), doc.TailleBytes)
	assert.Equal(t, id.ActorID("agent-1"), doc.UploadedBy)

	got, data, err := f.svc.Fetch(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.CheminBlob, got.CheminBlob)
	assert.Equal(t, content, data)
}

func TestAddOnArchivedClaimFailsLocked(t *testing.T) {
	f := newFixture(t)
	claim := f.seedClaim(t, true)

	_, err := f.svc.Add(f.ctx, claim.ID, "tardif.pdf", "application/pdf",
		[]byte("x"), authz.AdminCapabilities())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLocked))
}

func TestRemoveOnArchivedClaimFailsLocked(t *testing.T) {
	f := newFixture(t)
	claim := f.seedClaim(t, false)

	doc, err := f.svc.Add(f.ctx, claim.ID, "piece.pdf", "application/pdf",
		[]byte("x"), authz.AdminCapabilities())
	require.NoError(t, err)

	_, err = f.claims.Execute(f.ctx, claim.ID,
		func(c *claimmodels.Claim) error { return nil },
		func(c *claimmodels.Claim) { c.ApplyArchive(baseTime) })
	require.NoError(t, err)

	err = f.svc.Remove(f.ctx, doc.ID, authz.AdminCapabilities())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLocked))
}

func TestRemoveDeletesMetadataAndBlob(t *testing.T) {
	f := newFixture(t)
	claim := f.seedClaim(t, false)

	doc, err := f.svc.Add(f.ctx, claim.ID, "piece.pdf", "application/pdf",
		[]byte("x"), authz.AdminCapabilities())
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(f.ctx, doc.ID, authz.AdminCapabilities()))

	docs, err := f.svc.ListByClaim(f.ctx, claim.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
	_, err = f.blobs.Get(f.ctx, doc.CheminBlob)
	assert.Error(t, err)
}

func TestHandlerUploadFlow(t *testing.T) {
	f := newFixture(t)
	claim := f.seedClaim(t, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := authz.WithCapabilities(req.Context(), authz.AdminCapabilities())
			ctx = requestcontext.WithActorID(ctx, id.ActorID("agent-1"))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(f.svc, logger).Register(r)

	t.Run("uploads a document", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/claims/"+claim.ID.String()+"/documents", map[string]string{
				"nom":            "attestation.pdf",
				"content_type":   "application/pdf",
				"contenu_base64": base64.StdEncoding.EncodeToString([]byte("contenu")),
			})
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[DocumentResponse](t, rr)
		assert.Equal(t, "attestation.pdf", resp.Nom)
		assert.EqualValues(t, 7, resp.TailleBytes)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/claims/"+claim.ID.String()+"/documents", map[string]string{
				"nom":            "attestation.pdf",
				"contenu_base64": "not base64!!",
			})
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}
