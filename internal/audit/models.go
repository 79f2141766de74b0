// Package audit captures the actions taken on claims and quittances. Claim
// processing is a regulated activity; the compliance category feeds
// long-retention storage while operations events cover debugging.
package audit

import (
	"time"

	id "sinistra/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers events useful for debugging and visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string
	ActorID   id.ActorID
	ClaimID   id.ClaimID
	// Subject names the affected entity in human-readable form
	// (numero_sinistre or quittance reference).
	Subject string
	// Detail carries the operation-specific fact (motif, amount, mode).
	Detail    string
	RequestID string
}

type AuditEvent string

const (
	EventClaimDeclared       AuditEvent = "claim_declared"
	EventInstructionStarted  AuditEvent = "instruction_started"
	EventSettlementAdvanced  AuditEvent = "settlement_advanced"
	EventAssessmentApproved  AuditEvent = "assessment_approved"
	EventClaimRejected       AuditEvent = "claim_rejected"
	EventClaimPaid           AuditEvent = "claim_paid"
	EventClaimClosed         AuditEvent = "claim_closed"
	EventQuittancesGenerated AuditEvent = "quittances_generated"
	EventQuittanceValidated  AuditEvent = "quittance_validated"
	EventQuittancePaid       AuditEvent = "quittance_paid"
	EventQuittanceCancelled  AuditEvent = "quittance_cancelled"
	EventDocumentAdded       AuditEvent = "document_added"
	EventDocumentRemoved     AuditEvent = "document_removed"
)

// eventCategories maps each audit event to its category. Money-moving and
// terminal decisions are compliance; the rest is operational visibility.
var eventCategories = map[AuditEvent]EventCategory{
	EventClaimDeclared:      CategoryCompliance,
	EventAssessmentApproved: CategoryCompliance,
	EventClaimRejected:      CategoryCompliance,
	EventClaimClosed:        CategoryCompliance,
	EventQuittanceValidated: CategoryCompliance,
	EventQuittancePaid:      CategoryCompliance,
	EventQuittanceCancelled: CategoryCompliance,

	EventInstructionStarted:  CategoryOperations,
	EventSettlementAdvanced:  CategoryOperations,
	EventClaimPaid:           CategoryOperations,
	EventQuittancesGenerated: CategoryOperations,
	EventDocumentAdded:       CategoryOperations,
	EventDocumentRemoved:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
