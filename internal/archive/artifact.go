package archive

import (
	"context"
	"encoding/json"
	"fmt"

	claimstore "sinistra/internal/claims/store"
	"sinistra/internal/platform/blob"
	qstore "sinistra/internal/quittance/store"
)

// JSONArtifact renders a closed claim and its quittances into a single JSON
// document in blob storage. The artifact is the permanent record auditors
// consult after the row-level data has aged out.
type JSONArtifact struct {
	claims     claimstore.Store
	quittances qstore.Store
	blobs      blob.Store
}

func NewJSONArtifact(claims claimstore.Store, quittances qstore.Store, blobs blob.Store) *JSONArtifact {
	return &JSONArtifact{claims: claims, quittances: quittances, blobs: blobs}
}

func (g *JSONArtifact) Generate(ctx context.Context, job Job) (string, error) {
	claim, err := g.claims.FindByID(ctx, job.ClaimID)
	if err != nil {
		return "", fmt.Errorf("load claim for artifact: %w", err)
	}
	quittances, err := g.quittances.ListByClaim(ctx, job.ClaimID)
	if err != nil {
		return "", fmt.Errorf("load quittances for artifact: %w", err)
	}

	payload, err := json.MarshalIndent(map[string]any{
		"sinistre":   claim,
		"quittances": quittances,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render artifact: %w", err)
	}

	key := fmt.Sprintf("archives/%s/%s.json", claim.DateCloture.Format("2006"), claim.NumeroSinistre)
	ref, err := g.blobs.Put(ctx, key, "application/json", payload)
	if err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	return ref, nil
}
