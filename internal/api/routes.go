package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/pkg/httputil"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// SetupRoutes configures all routes.
func SetupRoutes(cfg config.ServerConfig, h *Handlers, health *HealthChecker) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httputil.NotFound(w, "no route for "+req.URL.Path)
	})
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	if health != nil {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/live", health.HandleLiveness)
		r.Get("/health/ready", health.HandleReadiness)
	}

	// Renderer reads the published document directly.
	r.Get("/data.json", h.HandleData)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.HandleData)

		r.Group(func(r chi.Router) {
			r.Use(h.requireConfig)
			r.Post("/refresh", h.HandleRefresh)
			r.Post("/apply", h.HandleApply)
		})
	})

	return r
}
