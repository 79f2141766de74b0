// Package domain holds typed identifiers shared across modules. Wrapping
// uuid.UUID keeps a claim ID from being passed where a quittance ID belongs.
package domain

import "github.com/google/uuid"

type ClaimID uuid.UUID

func NewClaimID() ClaimID { return ClaimID(uuid.New()) }

func ParseClaimID(s string) (ClaimID, error) {
	u, err := uuid.Parse(s)
	return ClaimID(u), err
}

func (id ClaimID) String() string { return uuid.UUID(id).String() }
func (id ClaimID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id ClaimID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *ClaimID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = ClaimID(u)
	return err
}

type QuittanceID uuid.UUID

func NewQuittanceID() QuittanceID { return QuittanceID(uuid.New()) }

func ParseQuittanceID(s string) (QuittanceID, error) {
	u, err := uuid.Parse(s)
	return QuittanceID(u), err
}

func (id QuittanceID) String() string { return uuid.UUID(id).String() }
func (id QuittanceID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id QuittanceID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *QuittanceID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = QuittanceID(u)
	return err
}

type ContractID uuid.UUID

func NewContractID() ContractID { return ContractID(uuid.New()) }

func ParseContractID(s string) (ContractID, error) {
	u, err := uuid.Parse(s)
	return ContractID(u), err
}

func (id ContractID) String() string { return uuid.UUID(id).String() }
func (id ContractID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id ContractID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *ContractID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = ContractID(u)
	return err
}

type DocumentID uuid.UUID

func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := uuid.Parse(s)
	return DocumentID(u), err
}

func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id DocumentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *DocumentID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = DocumentID(u)
	return err
}

// ActorID identifies the agent performing an operation. Actors come from the
// external session provider, so this stays a free-form string rather than a
// UUID wrapper.
type ActorID string

func (id ActorID) String() string { return string(id) }
func (id ActorID) IsZero() bool   { return id == "" }
