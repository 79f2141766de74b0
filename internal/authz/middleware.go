package authz

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "sinistra/pkg/domain"
	"sinistra/pkg/requestcontext"
)

// TokenValidator is satisfied by JWTService.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth validates the bearer capability token and stores the actor and
// capability set in the request context. Handlers read the capabilities back
// out and pass them explicitly into services.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := r.Context()
			ctx = requestcontext.WithActorID(ctx, id.ActorID(claims.ActorID))
			ctx = WithCapabilities(ctx, claims.Capabilities)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
