package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/medspa-booking-wizard/internal/appointments"
	httpmiddleware "github.com/wolfman30/medspa-booking-wizard/internal/http/middleware"
	"github.com/wolfman30/medspa-booking-wizard/internal/wizard"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	WizardHandler       *wizard.Handler
	AppointmentsHandler *appointments.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Per tenant+client limits on wizard traffic. Zero disables limiting.
	WizardRateLimitRPS   float64
	WizardRateLimitBurst int

	// Readiness checks keyed by dependency name (redis, postgres).
	ReadinessChecks map[string]ReadinessCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		public.Get("/ready", readinessCheck(cfg.ReadinessChecks, cfg.Logger))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Tenant-scoped API
	r.Group(func(api chi.Router) {
		api.Use(requireOrgID)
		if cfg.WizardHandler != nil {
			api.Route("/booking-wizard", func(wr chi.Router) {
				if cfg.WizardRateLimitRPS > 0 {
					wr.Use(httpmiddleware.RateLimit(cfg.WizardRateLimitRPS, cfg.WizardRateLimitBurst, tenantClientKey))
				}
				cfg.WizardHandler.RegisterRoutes(wr)
			})
		}
		if cfg.AppointmentsHandler != nil {
			api.Route("/appointments", cfg.AppointmentsHandler.RegisterRoutes)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func readinessCheck(checks map[string]ReadinessCheck, logger *logging.Logger) http.HandlerFunc {
	if logger == nil {
		logger = logging.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("readiness check failed", "dependency", name, "error", err)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(results)
	}
}
