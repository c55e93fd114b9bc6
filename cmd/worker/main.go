// Package main provides the entrypoint for the GreenPath history worker. It
// consumes route history events from Pub/Sub into the history store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/config"
	"github.com/greenpath/greenpath/internal/database"
	"github.com/greenpath/greenpath/internal/history"
	"github.com/greenpath/greenpath/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "greenpath-worker").
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting GreenPath worker")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.History.ProjectID == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var repo history.Repository
	if cfg.History.Backend == config.HistoryPostgres || cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		pg := history.NewPostgresRepository(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create history schema")
		}
		repo = pg
	} else {
		log.Warn().Msg("no database configured - history is kept in memory and lost on restart")
		repo = history.NewInMemoryRepository()
	}

	consumer, err := worker.NewHistoryConsumer(ctx, worker.ConsumerConfig{
		ProjectID:        cfg.History.ProjectID,
		SubscriptionName: cfg.History.Subscription,
		Repository:       repo,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create history consumer")
	}
	defer consumer.Close()

	// The worker exposes a health endpoint for the platform's probes.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Health{
			Status:  models.HealthStatusOK,
			Time:    models.Timestamp(time.Now()),
			Details: map[string]any{"version": Version},
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
		cancel()
		if err := <-done; err != nil {
			log.Error().Err(err).Msg("consumer stopped with error")
		}
	case err := <-done:
		log.Error().Err(err).Msg("consumer stopped unexpectedly")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
