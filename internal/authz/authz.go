// Package authz evaluates the fixed capability set against the current actor.
// Capabilities are an explicit argument to every mutating operation; nothing
// here reads ambient global state.
package authz

import (
	"context"

	dErrors "sinistra/pkg/domain-errors"
)

// Capability names one permission a mutating operation may require.
type Capability string

const (
	CapProcessClaims  Capability = "process_claims"
	CapValidateClaims Capability = "validate_claims"
	CapPayQuittances  Capability = "pay_quittances"
	CapCloseClaims    Capability = "close_claims"
)

// Capabilities is the evaluated capability set of one actor.
// Admin implies every capability; ReadOnly overrides everything.
type Capabilities struct {
	CanProcessClaims  bool `json:"can_process_claims"`
	CanValidateClaims bool `json:"can_validate_claims"`
	CanPayQuittances  bool `json:"can_pay_quittances"`
	CanCloseClaims    bool `json:"can_close_claims"`
	ReadOnly          bool `json:"read_only"`
	Admin             bool `json:"admin"`
}

// Admin returns a capability set with every permission.
func AdminCapabilities() Capabilities { return Capabilities{Admin: true} }

// ReadOnlyCapabilities returns the short-circuiting read-only set.
func ReadOnlyCapabilities() Capabilities { return Capabilities{ReadOnly: true} }

func (c Capabilities) has(cap Capability) bool {
	switch cap {
	case CapProcessClaims:
		return c.CanProcessClaims
	case CapValidateClaims:
		return c.CanValidateClaims
	case CapPayQuittances:
		return c.CanPayQuittances
	case CapCloseClaims:
		return c.CanCloseClaims
	}
	return false
}

// Require returns PermissionDenied unless the capability is granted.
// ReadOnly short-circuits regardless of the other flags.
func Require(caps Capabilities, cap Capability) error {
	if caps.ReadOnly {
		return dErrors.New(dErrors.CodeForbidden, "actor is read-only")
	}
	if caps.Admin {
		return nil
	}
	if !caps.has(cap) {
		return dErrors.Newf(dErrors.CodeForbidden, "missing capability %s", cap)
	}
	return nil
}

type capabilitiesKey struct{}

// ContextKeyCapabilities is exported for tests that build contexts directly.
var ContextKeyCapabilities = capabilitiesKey{}

// FromContext retrieves the capability set the auth middleware stored.
// The zero value (no capabilities) is returned when unset.
func FromContext(ctx context.Context) Capabilities {
	if caps, ok := ctx.Value(ContextKeyCapabilities).(Capabilities); ok {
		return caps
	}
	return Capabilities{}
}

// WithCapabilities injects a capability set into the context.
func WithCapabilities(ctx context.Context, caps Capabilities) context.Context {
	return context.WithValue(ctx, ContextKeyCapabilities, caps)
}
