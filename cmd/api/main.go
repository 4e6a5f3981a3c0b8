// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

// Command api is the entry point for the SetWave HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build provider clients behind the shared rate-limited fetcher.
//  7. Wire domains, the ingestion pipeline, and the trending engine.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minhlq/setwave/internal/api"
	"github.com/minhlq/setwave/internal/core/artist"
	"github.com/minhlq/setwave/internal/core/show"
	"github.com/minhlq/setwave/internal/core/song"
	"github.com/minhlq/setwave/internal/core/trending"
	"github.com/minhlq/setwave/internal/ingest"
	"github.com/minhlq/setwave/internal/platform/config"
	"github.com/minhlq/setwave/internal/platform/constants"
	"github.com/minhlq/setwave/internal/platform/migration"
	pgstore "github.com/minhlq/setwave/internal/platform/postgres"
	redisstore "github.com/minhlq/setwave/internal/platform/redis"
	"github.com/minhlq/setwave/internal/provider"
	"github.com/minhlq/setwave/internal/provider/musicbrainz"
	"github.com/minhlq/setwave/internal/provider/spotify"
	"github.com/minhlq/setwave/internal/provider/ticketmaster"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "setwave"))
	slog.SetDefault(log)

	log.Info("[SetWave] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "setwave"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Provider Clients ───────────────────────────────────────────────
	// One fetcher serves every provider; the limiter set keeps per-provider
	// request spacing regardless of which pipeline stage is calling.
	limiters := provider.NewLimiterSet()
	fetcher := provider.NewFetcher(limiters, cfg.IngestMaxAttempts, log)

	ticketmasterClient := ticketmaster.NewClient(fetcher, cfg.TicketmasterAPIKey)
	spotifyClient := spotify.NewClient(fetcher, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	musicbrainzClient := musicbrainz.NewClient(fetcher, cfg.MusicBrainzBaseURL)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	artistRepository := artist.NewPostgresRepository(pool)
	artistService := artist.NewService(artistRepository, log)
	artistHandler := artist.NewHandler(artistService)

	showRepository := show.NewPostgresRepository(pool)
	showService := show.NewService(showRepository, log)
	showHandler := show.NewHandler(showService)

	songRepository := song.NewPostgresRepository(pool)
	songService := song.NewService(songRepository, log)
	songHandler := song.NewHandler(songService)

	// Ingestion pipeline
	tracker := ingest.NewTracker(ingest.NewRedisStore(rdb), log)
	resolver := ingest.NewResolver(artistService, musicbrainzClient, cfg.ResolverMinMatchScore, log)
	merger := ingest.NewMerger(showService, songService, log)
	orchestrator := ingest.NewOrchestrator(
		tracker, resolver, merger, artistService,
		ticketmasterClient, spotifyClient,
		cfg.IngestMaxPages, log,
	)
	ingestHandler := ingest.NewHandler(orchestrator)

	// Trending engine
	trendingRepository := trending.NewPostgresRepository(pool)
	trendingCache := trending.NewRedisCache(rdb)
	trendingService := trending.NewService(
		trendingRepository,
		trendingCache,
		map[trending.EntityType]trending.ScoreWriter{
			trending.EntityArtist: artistRepository,
			trending.EntityShow:   showRepository,
		},
		trending.Weights{
			Votes:     cfg.TrendingWeightVotes,
			Attendees: cfg.TrendingWeightAttendees,
			Recency:   cfg.TrendingWeightRecency,
		},
		log,
	)
	trendingHandler := trending.NewHandler(trendingService)

	// ── 9. Background Recompute ───────────────────────────────────────────
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	scheduler := trending.NewScheduler(trendingService, cfg.TrendingRecompute, log)
	go scheduler.Run(schedulerCtx)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Artist:    artistHandler,
		Show:      showHandler,
		Song:      songHandler,
		Ingest:    ingestHandler,
		Trending:  trendingHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()
	server := api.NewServer(serverCtx, cfg, log, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Stop the scheduler before draining requests.
	schedulerCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
