// Package httputil centralizes JSON encoding and domain-error translation so
// every handler speaks the same envelope.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "sinistra/pkg/domain-errors"
	"sinistra/pkg/platform/sentinel"
)

// Validatable request types validate and parse themselves after decode.
type Validatable interface {
	Validate() error
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates an error into the JSON error envelope. Internal
// errors omit the description so infrastructure detail never leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := translate(err)
	status := dErrors.ToHTTPStatus(code)

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			body["error_description"] = domainErr.Message
		} else {
			body["error_description"] = err.Error()
		}
	}
	WriteJSON(w, status, body)
}

// translate maps storage sentinels onto domain codes; domain errors carry
// their own code.
func translate(err error) dErrors.Code {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.CodeNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.CodeConflict
	case errors.Is(err, sentinel.ErrStaleState):
		return dErrors.CodeConflict
	case errors.Is(err, sentinel.ErrLocked):
		return dErrors.CodeLocked
	}
	return dErrors.CodeOf(err)
}

// DecodeAndPrepare decodes the JSON body into T and runs its validation.
// On failure it writes the error response and returns ok=false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger,
	ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "request body decode failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, false
	}
	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}
