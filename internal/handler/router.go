package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires optional endpoints into the router
type RouterConfig struct {
	// Events serves GET /events when set
	Events http.Handler
	// Metrics serves GET /metrics when set
	Metrics http.Handler
	// Logger logs one line per request; nil disables request logging
	Logger *slog.Logger
	// Timeout bounds API requests; zero means no bound. /events is never bounded.
	Timeout time.Duration
}

// NewRouter builds the HTTP routes for the navigation API
func NewRouter(h *NavHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Get("/healthz", h.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.Events != nil {
		r.Method(http.MethodGet, "/events", cfg.Events)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.Timeout > 0 {
			r.Use(middleware.Timeout(cfg.Timeout))
		}
		r.Get("/route", h.GetRoute)
		r.Get("/rooms", h.ListRooms)
		r.Get("/rooms/nearest", h.NearestRoom)
		r.Get("/floors", h.ListFloors)

		r.Route("/graph", func(r chi.Router) {
			r.Get("/", h.GetGraph)
			r.Get("/diagnostics", h.GetDiagnostics)
			r.Post("/rebuild", h.Rebuild)
			r.Get("/builds", h.ListBuilds)
			r.Get("/builds/latest", h.LatestBuild)
		})
	})

	return r
}
