package dErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeInvalidTransition, "claim is not in en_cours")

	assert.True(t, HasCode(err, CodeInvalidTransition))
	assert.False(t, HasCode(err, CodeLocked))
	assert.False(t, HasCode(errors.New("plain"), CodeInvalidTransition))
	assert.False(t, HasCode(nil, CodeInvalidTransition))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load claim")

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(err, CodeInternal))
	assert.Contains(t, err.Error(), "failed to load claim")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHasCodeSeesThroughWrapping(t *testing.T) {
	inner := New(CodeLocked, "claim is archived")
	outer := fmt.Errorf("reject: %w", inner)

	assert.True(t, HasCode(outer, CodeLocked))
	assert.Equal(t, CodeLocked, CodeOf(outer))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:        http.StatusBadRequest,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeNotFound:          http.StatusNotFound,
		CodeInvalidTransition: http.StatusConflict,
		CodeLocked:            http.StatusLocked,
		CodePrecondition:      http.StatusPreconditionFailed,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
