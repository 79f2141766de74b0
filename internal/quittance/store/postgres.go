package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sinistra/internal/quittance/models"
	id "sinistra/pkg/domain"
	"sinistra/pkg/platform/sentinel"
)

const quittanceColumns = `id, reference, sinistre_id, type, statut, montant, beneficiaire,
	date_validation, valideur, date_paiement, mode_paiement, numero_transaction, motif_annulation`

// Postgres persists quittances in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateBatch(ctx context.Context, quittances []*models.Quittance) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quittance tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range quittances {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quittances (`+quittanceColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			uuid.UUID(q.ID), q.Reference, uuid.UUID(q.ClaimID), string(q.Type), string(q.Statut),
			q.Montant, q.Beneficiaire,
			nullTime(q.DateValidation), string(q.Valideur),
			nullTime(q.DatePaiement), string(q.ModePaiement), q.NumeroTransaction, q.MotifAnnulation,
		)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("create quittance %s: %w", q.Reference, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quittance tx: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, quittanceID id.QuittanceID) (*models.Quittance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quittanceColumns+` FROM quittances WHERE id = $1`, uuid.UUID(quittanceID))
	return scanQuittance(row)
}

func (s *Postgres) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Quittance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quittanceColumns+` FROM quittances WHERE sinistre_id = $1 ORDER BY reference`,
		uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list quittances: %w", err)
	}
	defer rows.Close()

	var out []*models.Quittance
	for rows.Next() {
		q, err := scanQuittance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, quittanceID id.QuittanceID,
	validate func(*models.Quittance) error, mutate func(*models.Quittance)) (*models.Quittance, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin quittance tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+quittanceColumns+` FROM quittances WHERE id = $1 FOR UPDATE`, uuid.UUID(quittanceID))
	q, err := scanQuittance(row)
	if err != nil {
		return nil, err
	}

	previousStatut := q.Statut
	if err := validate(q); err != nil {
		return nil, err
	}
	mutate(q)

	res, err := tx.ExecContext(ctx, `
		UPDATE quittances SET
			statut = $2, date_validation = $3, valideur = $4,
			date_paiement = $5, mode_paiement = $6, numero_transaction = $7,
			motif_annulation = $8
		WHERE id = $1 AND statut = $9`,
		uuid.UUID(q.ID), string(q.Statut),
		nullTime(q.DateValidation), string(q.Valideur),
		nullTime(q.DatePaiement), string(q.ModePaiement), q.NumeroTransaction,
		q.MotifAnnulation, string(previousStatut),
	)
	if err != nil {
		return nil, fmt.Errorf("update quittance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update quittance: %w", err)
	}
	if affected == 0 {
		return nil, sentinel.ErrStaleState
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit quittance tx: %w", err)
	}
	return q, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuittance(row rowScanner) (*models.Quittance, error) {
	var (
		q                        models.Quittance
		quittanceID, claimID     uuid.UUID
		qType, statut, mode      string
		valideur                 string
		dateValidation, paiement sql.NullTime
	)
	err := row.Scan(
		&quittanceID, &q.Reference, &claimID, &qType, &statut, &q.Montant, &q.Beneficiaire,
		&dateValidation, &valideur, &paiement, &mode, &q.NumeroTransaction, &q.MotifAnnulation,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan quittance: %w", err)
	}
	q.ID = id.QuittanceID(quittanceID)
	q.ClaimID = id.ClaimID(claimID)
	q.Type = models.QuittanceType(qType)
	q.Statut = models.QuittanceStatus(statut)
	q.Valideur = id.ActorID(valideur)
	q.ModePaiement = models.PaymentMode(mode)
	if dateValidation.Valid {
		t := dateValidation.Time
		q.DateValidation = &t
	}
	if paiement.Valid {
		t := paiement.Time
		q.DatePaiement = &t
	}
	return &q, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
