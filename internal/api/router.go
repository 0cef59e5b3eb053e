// Package api provides the HTTP API for BikePulse.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/bikepulse/bikepulse/internal/api/handler"
	"github.com/bikepulse/bikepulse/internal/api/middleware"
	"github.com/bikepulse/bikepulse/internal/availability"
	"github.com/bikepulse/bikepulse/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version             string
	BuildTime           string
	Logger              zerolog.Logger
	ServiceName         string
	Metrics             *middleware.Metrics
	Pool                *pgxpool.Pool
	StationService      *station.Service
	AvailabilityService *availability.Service
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "bikepulse-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool)
	stationHandler := handler.NewStationHandler(cfg.StationService)
	availabilityHandler := handler.NewAvailabilityHandler(cfg.AvailabilityService)
	searchHandler := handler.NewSearchHandler(cfg.StationService, cfg.AvailabilityService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Station reference endpoints - standard rate limiting
		r.Route("/stations", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", stationHandler.ListStations)
			r.Get("/{name}", stationHandler.GetStationByName)
		})

		// Availability time-series endpoints
		r.Route("/availability", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", availabilityHandler.ListAvailability)
			r.Get("/stations", availabilityHandler.DistinctStations)
			r.With(expensiveRateLimit).Get("/stats", availabilityHandler.Stats)
			r.Route("/{stationID}", func(r chi.Router) {
				r.Get("/", availabilityHandler.PagedHistory)
				r.Get("/history", availabilityHandler.History)
				r.With(expensiveRateLimit).Get("/summary", availabilityHandler.Summary)
			})
		})

		// Search endpoints - expensive compute, strict rate limiting
		r.Route("/search", func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Get("/", searchHandler.SearchStations)
			r.Get("/stations", searchHandler.PagedStationSearch)
			r.Get("/availability", searchHandler.SearchAvailability)
			r.Get("/nearby", searchHandler.Nearby)
		})
	})

	return r
}
