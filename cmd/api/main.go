// Package main provides the entrypoint for the GreenPath API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/airquality/waqi"
	"github.com/greenpath/greenpath/internal/api"
	"github.com/greenpath/greenpath/internal/api/handler"
	"github.com/greenpath/greenpath/internal/api/middleware"
	"github.com/greenpath/greenpath/internal/config"
	"github.com/greenpath/greenpath/internal/database"
	"github.com/greenpath/greenpath/internal/exposure"
	"github.com/greenpath/greenpath/internal/geocoding/nominatim"
	"github.com/greenpath/greenpath/internal/history"
	"github.com/greenpath/greenpath/internal/provider/resilience"
	"github.com/greenpath/greenpath/internal/recommend"
	"github.com/greenpath/greenpath/internal/routing/osrm"
	"github.com/greenpath/greenpath/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "greenpath-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting GreenPath API")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	telemetryCfg := cfg.Telemetry
	telemetryCfg.ServiceName = serviceName
	telemetryCfg.ServiceVersion = Version
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	if cfg.Providers.WAQIToken == "" {
		log.Warn().Msg("WAQI_TOKEN is not set - route requests will fail with a configuration error")
	}

	// Providers
	registry := resilience.NewRegistry()
	providerLog := log.With().Str("component", "provider").Logger()

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:      cfg.Providers.NominatimBaseURL,
		RegionSuffix: regionSuffix(cfg.Providers.RegionSuffix),
		UserAgent:    cfg.Providers.UserAgent,
		HTTPClient:   providerClient(nominatim.ProviderName, cfg.Providers, registry),
		Logger:       providerLog,
	})
	router := osrm.NewClient(osrm.ClientConfig{
		BaseURL:    cfg.Providers.OSRMBaseURL,
		HTTPClient: providerClient(osrm.ProviderName, cfg.Providers, registry),
		Logger:     providerLog,
	})
	airQuality := waqi.NewClient(waqi.ClientConfig{
		Token:      cfg.Providers.WAQIToken,
		BaseURL:    cfg.Providers.WAQIBaseURL,
		HTTPClient: providerClient(waqi.ProviderName, cfg.Providers, registry),
		Logger:     providerLog,
	})

	// History
	var (
		recorder history.Recorder
		lister   handler.HistoryLister
		pinger   handler.Pinger
	)
	switch cfg.History.Backend {
	case config.HistoryPostgres:
		pool := connectDatabase(ctx, log, cfg.Database)
		defer pool.Close()

		repo := history.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create history schema")
		}
		recorder, lister, pinger = repo, repo, pool
	case config.HistoryPubSub:
		publisher, err := history.NewPubSubPublisher(ctx, history.PublisherConfig{
			ProjectID: cfg.History.ProjectID,
			TopicName: cfg.History.Topic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create history publisher")
		}
		defer publisher.Close()
		recorder = publisher

		// The worker owns writes; reads still come from the database when
		// one is configured.
		if cfg.Database.URL != "" {
			pool := connectDatabase(ctx, log, cfg.Database)
			defer pool.Close()
			lister, pinger = history.NewPostgresRepository(pool), pool
		}
	case config.HistoryMemory:
		repo := history.NewInMemoryRepository()
		recorder, lister = repo, repo
	case config.HistoryNone:
	}
	log.Info().
		Str("backend", string(cfg.History.Backend)).
		Bool("listing", lister != nil).
		Msg("route history configured")

	recommender := recommend.NewService(recommend.ServiceConfig{
		Geocoder:   geocoder,
		Router:     router,
		AirQuality: airQuality,
		Metrics:    providerMetrics,
		Location:   recommend.LoadLocation(cfg.Providers.TimeZone),
		Logger:     log,
	})
	// Only route searches are recorded; exposure analyses reuse the plain
	// pipeline.
	searches := recommend.NewHistoryRecorder(recommend.HistoryRecorderConfig{
		Finder: recommender,
		Store:  recorder,
		Logger: log,
	})
	comparer := exposure.NewComparer(exposure.ComparerConfig{
		Geocoder: geocoder,
		Metrics:  providerMetrics,
		Logger:   log,
	})

	handlerRouter := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		ServiceName: serviceName,
		Logger:      log,
		Metrics:     metrics,
		Routes:      searches,
		Exposure:    exposure.NewService(recommender, comparer),
		AirQuality:  recommender,
		History:     lister,
		DB:          pinger,
		Providers:   registry,
		RequireTLS:  cfg.RequireTLS,
		RateLimit:   cfg.RateLimit,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlerRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	// Let pending history saves finish before the store is closed.
	searches.Wait()

	log.Info().Msg("server stopped")
}

// providerClient builds the resilient HTTP client shared by a provider's
// calls and registers it for /api/ops/status.
func providerClient(name string, cfg config.ProvidersConfig, registry *resilience.Registry) *resilience.Client {
	clientCfg := resilience.DefaultClientConfig(name)
	clientCfg.Timeout = cfg.Timeout
	clientCfg.MaxRetries = uint64(cfg.MaxRetries) //nolint:gosec // validated non-negative
	if cfg.MaxRetries == 0 {
		clientCfg.MaxRetries = resilience.NoRetries
	}
	clientCfg.Registry = registry
	return resilience.NewClient(clientCfg)
}

// regionSuffix maps an explicitly empty suffix onto the client's opt-out value.
func regionSuffix(s string) string {
	if s == "" || s == "none" {
		return nominatim.NoRegionSuffix
	}
	return s
}

func connectDatabase(ctx context.Context, log zerolog.Logger, cfg database.Config) *pgxpool.Pool {
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("database connected")
	return pool
}
