package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sinistra/internal/claims/models"
	id "sinistra/pkg/domain"
	"sinistra/pkg/platform/sentinel"
)

const documentColumns = `id, sinistre_id, nom, content_type, taille_bytes, chemin_blob, uploaded_by, uploaded_at`

// Postgres persists document metadata in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, doc *models.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		uuid.UUID(doc.ID), uuid.UUID(doc.ClaimID), doc.Nom, doc.ContentType,
		doc.TailleBytes, doc.CheminBlob, string(doc.UploadedBy), doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, uuid.UUID(docID))
	return scanDocument(row)
}

func (s *Postgres) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE sinistre_id = $1 ORDER BY uploaded_at`,
		uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, docID id.DocumentID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, uuid.UUID(docID))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc            models.Document
		docID, claimID uuid.UUID
		uploadedBy     string
		uploadedAt     time.Time
	)
	err := row.Scan(&docID, &claimID, &doc.Nom, &doc.ContentType,
		&doc.TailleBytes, &doc.CheminBlob, &uploadedBy, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.ID = id.DocumentID(docID)
	doc.ClaimID = id.ClaimID(claimID)
	doc.UploadedBy = id.ActorID(uploadedBy)
	doc.UploadedAt = uploadedAt
	return &doc, nil
}
