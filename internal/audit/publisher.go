package audit

import (
	"context"
	"time"

	id "sinistra/pkg/domain"
)

// Store is the append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
	inbox chan<- Event
}

type Option func(*Publisher)

// WithInbox routes emitted events through a queue drained by a Worker,
// keeping the store write off the request path.
func WithInbox(inbox chan<- Event) Option {
	return func(p *Publisher) { p.inbox = inbox }
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	if p.inbox != nil {
		select {
		case p.inbox <- event:
			return nil
		default:
			// Queue full: degrade to a synchronous append rather than drop
			// a compliance event.
		}
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]Event, error) {
	return p.store.ListByClaim(ctx, claimID)
}
