// Package api provides the HTTP API for GreenPath.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/api/handler"
	"github.com/greenpath/greenpath/internal/api/middleware"
	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/api/response"
	"github.com/greenpath/greenpath/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	ServiceName string
	Logger      zerolog.Logger
	Metrics     *middleware.Metrics

	Routes     handler.RouteFinder
	Exposure   handler.ExposureAnalyzer
	AirQuality handler.AirQualityLookup
	// History may be nil when this process does not store history.
	History handler.HistoryLister

	DB        handler.Pinger
	Providers *resilience.Registry

	RequireTLS bool
	// RateLimit is requests per minute per IP on the provider-backed
	// endpoints. Zero disables it.
	RateLimit int
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "greenpath-api"
	}

	// Global middleware - order matters
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		DB:        cfg.DB,
		Providers: cfg.Providers,
	})
	routeHandler := handler.NewRouteHandler(cfg.Routes, cfg.Logger)
	exposureHandler := handler.NewExposureHandler(cfg.Exposure, cfg.Logger)
	aqiHandler := handler.NewAQIHandler(cfg.AirQuality, cfg.Logger)
	historyHandler := handler.NewHistoryHandler(cfg.History, cfg.Logger)

	providerRateLimit := middleware.RateLimitByIP(middleware.PerMinute(cfg.RateLimit))
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem := models.NewProblem(models.ProblemTypeValidation, "Method not allowed", http.StatusMethodNotAllowed,
			middleware.GetRequestID(r.Context()))
		response.Error(w, r, problem.WithDetail(r.Method+" is not supported on "+r.URL.Path))
	})

	r.Get("/", opsHandler.Root)

	r.Route("/api", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/routes", func(r chi.Router) {
			r.With(providerRateLimit).Get("/", routeHandler.GetRoutes)
			r.With(providerRateLimit, middleware.RequireJSON).Post("/", routeHandler.PostRoutes)
			r.With(standardRateLimit).Get("/history", historyHandler.ListHistory)
		})

		r.With(providerRateLimit).Get("/exposure", exposureHandler.GetExposure)
		r.With(providerRateLimit).Get("/aqi", aqiHandler.GetAQI)
	})

	return r
}
