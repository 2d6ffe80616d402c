// Package api provides the HTTP API for tripsense.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/api/handler"
	"github.com/tripsense/tripsense/internal/api/middleware"
	"github.com/tripsense/tripsense/internal/api/models"
	"github.com/tripsense/tripsense/internal/crime"
	"github.com/tripsense/tripsense/internal/planner"
	"github.com/tripsense/tripsense/internal/snapshot"
	"github.com/tripsense/tripsense/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	ServiceName    string
	Metrics        *middleware.Metrics
	PlannerService *planner.Service
	WeatherService *weather.Service
	CrimeService   *crime.Service
	Snapshots      snapshot.Repository
	ReadyChecks    map[string]handler.ReadyCheck
	Providers      func() []models.ProviderStatus
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripsense-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	tripHandler := handler.NewTripHandler(cfg.PlannerService, cfg.Snapshots, cfg.Logger)
	overlayHandler := handler.NewOverlayHandler(cfg.WeatherService, cfg.CrimeService)
	itineraryHandler := handler.NewItineraryHandler(cfg.Snapshots, cfg.Logger)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadyChecks, cfg.Providers)

	// Planning and overlay endpoints fan out to external providers, so
	// they share the stricter limit.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public, unthrottled)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.With(expensiveRateLimit).Post("/trips:plan", tripHandler.PlanTrip)
		r.With(expensiveRateLimit).Post("/trips:optimize", tripHandler.OptimizeTrip)

		r.Route("/overlays", func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Post("/weather", overlayHandler.WeatherOverlay)
			r.Post("/crime", overlayHandler.CrimeOverlay)
		})

		r.With(standardRateLimit).Get("/itinerary/last", itineraryHandler.LastItinerary)
	})

	return r
}
