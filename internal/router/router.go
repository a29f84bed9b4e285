package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-wbs-tracker/internal/config"
	"go-wbs-tracker/internal/handler"
	"go-wbs-tracker/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Task   *handler.TaskHandler
	Link   *handler.LinkHandler
	Events *handler.EventsHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	metricsMiddleware := middleware.NewMetricsMiddleware(registry)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metricsMiddleware.Handler)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", h.Health.Check)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", h.Auth.Register)
		auth.Post("/login", h.Auth.Login)
		auth.Post("/refresh", h.Auth.Refresh)
		auth.Post("/logout", h.Auth.Logout)
	})

	// Reads are open; every mutation goes through the bearer gate.
	r.Get("/tasks", h.Task.List)
	r.With(authMiddleware.RequireAuth).Post("/tasks", h.Task.Create)
	r.With(authMiddleware.RequireAuth).Patch("/tasks/{id}", h.Task.Update)
	r.With(authMiddleware.RequireAuth).Delete("/tasks/{id}", h.Task.Delete)

	r.Get("/links", h.Link.List)
	r.With(authMiddleware.RequireAuth).Post("/links", h.Link.Create)
	r.With(authMiddleware.RequireAuth).Delete("/links/{id}", h.Link.Delete)

	r.Get("/events", h.Events.Stream)

	return r
}
