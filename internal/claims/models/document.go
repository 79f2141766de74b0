package models

import (
	"time"

	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
)

// Document is one supporting piece uploaded against a claim. The blob itself
// lives in the external document store; this core owns only the metadata and
// the lock gating.
type Document struct {
	ID          id.DocumentID `json:"id"`
	ClaimID     id.ClaimID    `json:"claim_id"`
	Nom         string        `json:"nom"`
	ContentType string        `json:"content_type"`
	TailleBytes int64         `json:"taille_bytes"`
	CheminBlob  string        `json:"chemin_blob"`
	UploadedBy  id.ActorID    `json:"uploaded_by"`
	UploadedAt  time.Time     `json:"uploaded_at"`
}

// NewDocument validates and builds document metadata.
func NewDocument(docID id.DocumentID, claimID id.ClaimID, nom, contentType, cheminBlob string,
	taille int64, actor id.ActorID, now time.Time) (*Document, error) {
	if nom == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document nom is required")
	}
	if cheminBlob == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document chemin_blob is required")
	}
	if taille <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "document taille_bytes must be positive")
	}
	return &Document{
		ID:          docID,
		ClaimID:     claimID,
		Nom:         nom,
		ContentType: contentType,
		TailleBytes: taille,
		CheminBlob:  cheminBlob,
		UploadedBy:  actor,
		UploadedAt:  now,
	}, nil
}
