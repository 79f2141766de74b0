package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sinistra/internal/claims/models"
	"sinistra/internal/contracts"
	id "sinistra/pkg/domain"
	"sinistra/pkg/platform/sentinel"
)

const claimColumns = `id, numero_sinistre, contrat_variant, contrat_id, type_sinistre, statut,
	date_sinistre, date_declaration, date_reception_documents, date_decision,
	date_traitement, date_paiement, date_cloture,
	capital_restant_du, montant_reclame, montant_indemnisation,
	observations, motif_rejet, est_archive, fichier_archive`

// Postgres persists claims in PostgreSQL. Execute serializes concurrent
// transitions with SELECT ... FOR UPDATE plus a statut compare-and-set on
// the final write.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, claim *models.Claim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		uuid.UUID(claim.ID), claim.NumeroSinistre, string(claim.ContratRef.Variant),
		uuid.UUID(claim.ContratRef.ContractID), string(claim.Type), string(claim.Statut),
		claim.DateSinistre, claim.DateDeclaration,
		nullTime(claim.DateReceptionDocuments), nullTime(claim.DateDecision),
		nullTime(claim.DateTraitement), nullTime(claim.DatePaiement), nullTime(claim.DateCloture),
		claim.CapitalRestantDu, nullInt(claim.MontantReclame), nullInt(claim.MontantIndemnisation),
		claim.Observations, claim.MotifRejet, claim.EstArchive, claim.FichierArchive,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = $1`, uuid.UUID(claimID))
	return scanClaim(row)
}

func (s *Postgres) FindByNumero(ctx context.Context, numero string) (*models.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE lower(numero_sinistre) = lower($1)`, numero)
	return scanClaim(row)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Claim, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claims ORDER BY date_declaration DESC`)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []*models.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, claim)
	}
	return out, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, claimID id.ClaimID,
	validate func(*models.Claim) error, mutate func(*models.Claim)) (*models.Claim, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = $1 FOR UPDATE`, uuid.UUID(claimID))
	claim, err := scanClaim(row)
	if err != nil {
		return nil, err
	}

	previousStatut := claim.Statut
	if err := validate(claim); err != nil {
		return nil, err
	}
	mutate(claim)

	res, err := tx.ExecContext(ctx, `
		UPDATE claims SET
			statut = $2,
			date_reception_documents = $3, date_decision = $4, date_traitement = $5,
			date_paiement = $6, date_cloture = $7,
			montant_indemnisation = $8, observations = $9, motif_rejet = $10,
			est_archive = $11
		WHERE id = $1 AND statut = $12`,
		uuid.UUID(claim.ID), string(claim.Statut),
		nullTime(claim.DateReceptionDocuments), nullTime(claim.DateDecision),
		nullTime(claim.DateTraitement), nullTime(claim.DatePaiement), nullTime(claim.DateCloture),
		nullInt(claim.MontantIndemnisation), claim.Observations, claim.MotifRejet,
		claim.EstArchive, string(previousStatut),
	)
	if err != nil {
		return nil, fmt.Errorf("update claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update claim: %w", err)
	}
	if affected == 0 {
		return nil, sentinel.ErrStaleState
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}
	return claim, nil
}

func (s *Postgres) SetArchiveRef(ctx context.Context, claimID id.ClaimID, ref string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE claims SET fichier_archive = $2 WHERE id = $1`, uuid.UUID(claimID), ref)
	if err != nil {
		return fmt.Errorf("set archive ref: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set archive ref: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.Claim, error) {
	var (
		claim                           models.Claim
		claimID, contractID             uuid.UUID
		variant, claimType, statut      string
		reception, decision, traitement sql.NullTime
		paiement, cloture               sql.NullTime
		montantReclame, indemnisation   sql.NullInt64
	)
	err := row.Scan(
		&claimID, &claim.NumeroSinistre, &variant, &contractID, &claimType, &statut,
		&claim.DateSinistre, &claim.DateDeclaration, &reception, &decision,
		&traitement, &paiement, &cloture,
		&claim.CapitalRestantDu, &montantReclame, &indemnisation,
		&claim.Observations, &claim.MotifRejet, &claim.EstArchive, &claim.FichierArchive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan claim: %w", err)
	}
	claim.ID = id.ClaimID(claimID)
	claim.ContratRef = contracts.Ref{Variant: contracts.VariantTag(variant), ContractID: id.ContractID(contractID)}
	claim.Type = models.ClaimType(claimType)
	claim.Statut = models.ClaimStatus(statut)
	claim.DateReceptionDocuments = timePtr(reception)
	claim.DateDecision = timePtr(decision)
	claim.DateTraitement = timePtr(traitement)
	claim.DatePaiement = timePtr(paiement)
	claim.DateCloture = timePtr(cloture)
	claim.MontantReclame = intPtr(montantReclame)
	claim.MontantIndemnisation = intPtr(indemnisation)
	return &claim, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullInt(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func intPtr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
