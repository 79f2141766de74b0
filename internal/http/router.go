// Package http assembles the public router. Handlers stay in their domain
// packages; this only decides the middleware chain and which routes sit
// behind authentication.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sinistra/internal/authz"
	claimshandler "sinistra/internal/claims/handler"
	"sinistra/internal/documents"
	"sinistra/internal/platform/middleware"
	quittancehandler "sinistra/internal/quittance/handler"
)

// Handlers groups the mounted domain handlers.
type Handlers struct {
	Claims     *claimshandler.Handler
	Quittances *quittancehandler.Handler
	Documents  *documents.Handler
}

// NewRouter builds the full middleware chain and mounts every endpoint.
// /healthz and /metrics stay public; everything else requires a capability
// token.
func NewRouter(h Handlers, validator authz.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(authz.RequireAuth(validator, logger))
		h.Claims.Register(api)
		h.Quittances.Register(api)
		h.Documents.Register(api)
	})

	return r
}
