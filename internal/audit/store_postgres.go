package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "sinistra/pkg/domain"
)

// PostgresStore is the durable append-only audit log.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (category, ts, action, actor_id, sinistre_id, subject, detail, request_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		string(event.Category), event.Timestamp, event.Action, string(event.ActorID),
		uuid.UUID(event.ClaimID), event.Subject, event.Detail, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, ts, action, actor_id, sinistre_id, subject, detail, request_id
		FROM audit_events WHERE sinistre_id = $1 ORDER BY ts`,
		uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event    Event
			category string
			ts       time.Time
			actor    string
			claim    uuid.UUID
		)
		if err := rows.Scan(&category, &ts, &event.Action, &actor, &claim,
			&event.Subject, &event.Detail, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = EventCategory(category)
		event.Timestamp = ts
		event.ActorID = id.ActorID(actor)
		event.ClaimID = id.ClaimID(claim)
		out = append(out, event)
	}
	return out, rows.Err()
}
