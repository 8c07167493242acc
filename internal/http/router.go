// Package httpapi composes the domain handlers into the service router.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	departmenthandler "worktrack/internal/department/handler"
	identityhandler "worktrack/internal/identity/handler"
	"worktrack/internal/platform/metrics"
	"worktrack/internal/platform/middleware"
	taskhandler "worktrack/internal/task/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	JWT         middleware.JWTValidator
	AdminToken  string
	Tasks       *taskhandler.Handler
	Departments *departmenthandler.Handler
	Identities  *identityhandler.Handler
	// Health reports readiness of backing stores; nil checks pass.
	Health func() error
}

// NewRouter assembles the middleware chain and mounts all endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Authenticated API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.JWT, deps.Logger))
		deps.Tasks.Register(r)
	})

	// Admin surface.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAdminToken(deps.AdminToken, deps.Logger))
		deps.Departments.Register(r)
		deps.Identities.Register(r)
	})

	return r
}
