// Package router wires handlers and middleware into the API's route tree.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/irpartners/brokerage-api/internal/auth"
	httpmiddleware "github.com/irpartners/brokerage-api/internal/http/middleware"
	"github.com/irpartners/brokerage-api/internal/leads"
	"github.com/irpartners/brokerage-api/internal/observability/metrics"
	"github.com/irpartners/brokerage-api/internal/properties"
	"github.com/irpartners/brokerage-api/internal/ratelimit"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	PropertiesHandler  *properties.Handler
	AuthHandler        *auth.Handler
	AuthService        *auth.Service
	SubmitLimiter      *ratelimit.Limiter
	Metrics            *metrics.Metrics
	MetricsHandler     http.Handler
	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public lead submission, throttled per client IP.
	r.Route("/leads", func(public chi.Router) {
		if cfg.SubmitLimiter != nil {
			public.Use(httpmiddleware.RateLimit(cfg.SubmitLimiter, cfg.Metrics, cfg.Logger))
		}
		public.Post("/contact", cfg.LeadsHandler.SubmitContact)
		public.Post("/request-info", cfg.LeadsHandler.SubmitRequestInfo)
		public.Post("/schedule-walkthrough", cfg.LeadsHandler.SubmitScheduleWalkthrough)
	})

	// Public listings.
	if cfg.PropertiesHandler != nil {
		r.Get("/properties", cfg.PropertiesHandler.List)
		r.Get("/properties/{slug}", cfg.PropertiesHandler.GetBySlug)
	}

	// Admin session management.
	if cfg.AuthHandler != nil {
		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", cfg.AuthHandler.Login)
			ar.Post("/logout", cfg.AuthHandler.Logout)
			ar.With(auth.RequireAdmin(cfg.AuthService, cfg.AdminJWTSecret)).Get("/me", cfg.AuthHandler.Me)
		})
	}

	// Admin routes, behind session or bearer auth.
	if cfg.AuthService != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.RequireAdmin(cfg.AuthService, cfg.AdminJWTSecret))

			admin.Route("/leads", func(lr chi.Router) {
				lr.Get("/", cfg.LeadsHandler.List)
				lr.Get("/{id}", cfg.LeadsHandler.Get)
				lr.Patch("/{id}", cfg.LeadsHandler.UpdateStatus)
				lr.Delete("/{id}", cfg.LeadsHandler.Delete)
			})

			if cfg.PropertiesHandler != nil {
				admin.Route("/properties", func(pr chi.Router) {
					pr.Get("/", cfg.PropertiesHandler.AdminList)
					pr.Post("/", cfg.PropertiesHandler.Create)
					pr.Get("/{id}", cfg.PropertiesHandler.AdminGet)
					pr.Put("/{id}", cfg.PropertiesHandler.Update)
					pr.Patch("/{id}", cfg.PropertiesHandler.PatchFlags)
					pr.Delete("/{id}", cfg.PropertiesHandler.Delete)
				})
				admin.Post("/upload", cfg.PropertiesHandler.Upload)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
