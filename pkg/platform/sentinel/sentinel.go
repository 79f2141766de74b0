package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: unique constraint or duplicate write
// - ErrStaleState: compare-and-set precondition no longer holds
// - ErrLocked: aggregate is archived and refuses mutation
// - ErrUnavailable: service or resource temporarily unavailable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrStaleState  = errors.New("stale state")
	ErrLocked      = errors.New("locked")
	ErrUnavailable = errors.New("unavailable")
)
