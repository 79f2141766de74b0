package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "sinistra/pkg/domain"
	dErrors "sinistra/pkg/domain-errors"
)

func TestRequire(t *testing.T) {
	t.Run("grants when flag is set", func(t *testing.T) {
		caps := Capabilities{CanProcessClaims: true}
		assert.NoError(t, Require(caps, CapProcessClaims))
	})

	t.Run("denies when flag is missing", func(t *testing.T) {
		caps := Capabilities{CanProcessClaims: true}
		err := Require(caps, CapPayQuittances)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("admin implies every capability", func(t *testing.T) {
		caps := AdminCapabilities()
		for _, c := range []Capability{CapProcessClaims, CapValidateClaims, CapPayQuittances, CapCloseClaims} {
			assert.NoError(t, Require(caps, c), string(c))
		}
	})

	t.Run("read-only short-circuits even with admin", func(t *testing.T) {
		caps := Capabilities{Admin: true, ReadOnly: true}
		err := Require(caps, CapProcessClaims)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "sinistra")
	caps := Capabilities{CanValidateClaims: true, CanPayQuittances: true}

	token, err := svc.GenerateToken(id.ActorID("agent-17"), caps, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-17", claims.ActorID)
	assert.Equal(t, caps, claims.Capabilities)
}

func TestJWTRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-signing-key", "sinistra")
	token, err := svc.GenerateToken(id.ActorID("agent-17"), AdminCapabilities(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTRejectsWrongKey(t *testing.T) {
	issuer := NewJWTService("key-a", "sinistra")
	verifier := NewJWTService("key-b", "sinistra")

	token, err := issuer.GenerateToken(id.ActorID("agent-17"), AdminCapabilities(), time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
