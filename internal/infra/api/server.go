package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/infra/api/apiv1"
)

// RouterDeps wires the public router. Metrics may be nil.
type RouterDeps struct {
	API            *apiv1.Server
	Auth           *Authenticator
	Metrics        http.Handler
	HandlerTimeout time.Duration
	Logger         *zerolog.Logger
}

// NewRouter builds the full HTTP surface. /health and /metrics are public; every
// /api/v1 route requires a bearer token.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(Recover(deps.Logger), TraceID(), RequestLog(deps.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		apiv1.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Middleware(deps.API.WriteError), Timeout(deps.HandlerTimeout))
		apiv1.RegisterAPIV1(r, deps.API)
	})
	return r
}
