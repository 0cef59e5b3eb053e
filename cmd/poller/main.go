// Package main provides the entrypoint for the BikePulse ingestion poller.
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

	"github.com/bikepulse/bikepulse/internal/availability"
	"github.com/bikepulse/bikepulse/internal/config"
	"github.com/bikepulse/bikepulse/internal/database"
	"github.com/bikepulse/bikepulse/internal/jcdecaux"
	"github.com/bikepulse/bikepulse/internal/poller"
	"github.com/bikepulse/bikepulse/internal/provider/resilience"
	"github.com/bikepulse/bikepulse/internal/station"
	"github.com/bikepulse/bikepulse/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "bikepulse-poller"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting BikePulse poller")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
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

	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	registry := resilience.NewRegistry()
	feed := jcdecaux.NewClient(jcdecaux.ClientConfig{
		BaseURL:  cfg.FeedBaseURL,
		Contract: cfg.FeedContract,
		APIKey:   cfg.FeedAPIKey,
		Timeout:  cfg.FetchTimeout,
		Registry: registry,
	})

	var audit poller.AuditWriter = poller.NopAuditWriter{}
	if cfg.AuditDir != "" {
		fileAudit, err := poller.NewFileAuditWriter(cfg.AuditDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.AuditDir).Msg("failed to create audit directory")
		}
		audit = fileAudit
		log.Info().Str("dir", cfg.AuditDir).Msg("raw feed archive enabled")
	}

	p, err := poller.New(poller.PollerConfig{
		Config:    cfg.PollerConfig(),
		Source:    feed,
		Stations:  station.NewPostgresRepository(pool),
		Snapshots: availability.NewPostgresRepository(pool),
		Audit:     audit,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create poller")
	}

	// Health endpoint so the scheduler/platform can probe the loop.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		last := p.LastCycle()

		body := map[string]interface{}{
			"status":  "healthy",
			"version": Version,
		}
		if !last.StartedAt.IsZero() {
			body["last_cycle"] = map[string]interface{}{
				"started_at": last.StartedAt.Format(time.RFC3339),
				"stations":   last.Stations,
				"written":    last.Written,
				"duplicates": last.Duplicates,
			}
			if last.Err != nil {
				body["status"] = "degraded"
				body["last_cycle_error"] = last.Err.Error()
			}
		}
		if health := registry.GetHealth(jcdecaux.ProviderName); health != nil {
			body["feed_healthy"] = health.IsHealthy()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health endpoint listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Cancel the run context on SIGINT/SIGTERM; the deadline ends it otherwise.
	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runErr := p.Run(runCtx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error().Err(runErr).Msg("poller stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("poller stopped")
}
