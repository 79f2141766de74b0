// Package notify publishes claim lifecycle events for downstream consumers:
// partner EMF back-offices, the commission reconciliation batch, and SMS
// gateways subscribing to payment events.
package notify

import "context"

// Event is the stakeholder-facing notification payload. It carries business
// identifiers, never internal UUIDs, because consumers key on claim numbers.
type Event struct {
	Type           string `json:"type"`
	NumeroSinistre string `json:"numero_sinistre"`
	Reference      string `json:"reference,omitempty"`
	Montant        int64  `json:"montant,omitempty"`
	Beneficiaire   string `json:"beneficiaire,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}

// Event types consumed by downstream systems.
const (
	TypeClaimDeclared      = "sinistre.declare"
	TypeClaimRejected      = "sinistre.rejete"
	TypeClaimSettled       = "sinistre.paye"
	TypeClaimClosed        = "sinistre.cloture"
	TypeQuittanceGenerated = "quittance.generee"
	TypeQuittancePaid      = "quittance.payee"
)

// Notifier publishes events. Implementations must be safe for concurrent use.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards events. Used in development and in tests that don't assert
// on notifications.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
