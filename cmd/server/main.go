package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/callvox/painel/backend/internal/aggregator"
	"github.com/callvox/painel/backend/internal/ami"
	"github.com/callvox/painel/backend/internal/api"
	"github.com/callvox/painel/backend/internal/auth"
	"github.com/callvox/painel/backend/internal/config"
	"github.com/callvox/painel/backend/internal/directory"
	"github.com/callvox/painel/backend/internal/event"
	"github.com/callvox/painel/backend/internal/events"
	"github.com/callvox/painel/backend/internal/feed"
	"github.com/callvox/painel/backend/internal/metadata"
	"github.com/callvox/painel/backend/internal/metrics"
	"github.com/callvox/painel/backend/internal/pipeline"
	"github.com/callvox/painel/backend/internal/storage"
	"github.com/callvox/painel/backend/internal/ticker"
	"github.com/callvox/painel/backend/internal/websocket"
	"github.com/callvox/painel/backend/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	auth.SetLogger(log.Logger)

	log.Info().
		Str("port", cfg.Port).
		Str("ami_addr", cfg.AMIAddr).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Msg("starting painel backend server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Aggregation pipeline
	pipe := pipeline.New(pipeline.CombineOptions{
		OnlyFromStatus: cfg.OnlyFromStatus,
		OnlyWithAgents: cfg.OnlyWithAgents,
	}, log.Logger)

	// Panel presence directory, Redis-backed when configured
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, presence will be memory-only")
			rdb = nil
		}
		pingCancel()
	}
	dir := directory.NewStore(rdb, cfg.PresenceTTL, log.Logger)
	if rdb != nil {
		if err := dir.Warm(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to warm presence directory from redis")
		}
	}

	// Queue metadata from Postgres
	var pool *pgxpool.Pool
	if cfg.PostgresURL != "" {
		pool, err = metadata.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
	} else {
		log.Warn().Msg("POSTGRES_URL not set, queue metadata unavailable")
	}
	meta := metadata.NewStore(pool, log.Logger)
	meta.Refresh(ctx)

	// Transition history store
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize transition store")
	}

	// Kafka transition publisher (nil when disabled)
	publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect Kafka producer")
	}
	defer publisher.Close()

	// WebSocket hubs
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	panelHub := websocket.NewPanelHub(dir, log.Logger)
	go panelHub.Run(ctx)

	// PBX feed
	registry := feed.NewRegistry()
	feedHandler := feed.NewHandler(pipe, log.Logger)
	amiClient := ami.NewClient(ami.Config{
		Addr:     cfg.AMIAddr,
		Username: cfg.AMIUser,
		Secret:   cfg.AMISecret,
	}, feedHandler.HandleEvent, log.Logger)

	amiCtx, amiCancel := context.WithCancel(ctx)
	go amiClient.Run(amiCtx)
	registry.Register(amiCancel)

	// Aggregation loop
	agg := aggregator.New(pipe, dir, meta, hub, store, publisher, cfg.AggregateInterval, log.Logger)
	go agg.Start(ctx)

	// Keep queue metadata current in the background
	refresher := ticker.NewRefresher(meta, 5*time.Minute, log.Logger)
	go refresher.Start(ctx)

	// Handlers
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)
	panelHandler := websocket.NewPanelHandler(panelHub, log.Logger)
	dashboardHandler := api.NewDashboardHandler(agg, pipe, meta, log.Logger)
	actionsHandler := api.NewAgentActionsHandler(amiClient, agg, panelHub, log.Logger)
	historyHandler := api.NewAgentHistoryHandler(store, log.Logger)
	queueAdminHandler := api.NewQueueAdminHandler(meta, amiClient, log.Logger)
	adminHandler := api.NewAdminHandler(store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Internal routes (no auth - for replay tooling on the private network)
	eventReceiver := event.NewReceiver(feedHandler, log.Logger)
	r.Route("/internal", func(r chi.Router) {
		r.Post("/event", eventReceiver.HandleEvent)
		r.Get("/event/stats", eventReceiver.GetStats)
	})

	// Panel presence socket (agents authenticate at the PBX, not here)
	r.Get("/panel/ws", panelHandler.ServeHTTP)

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/agents", dashboardHandler.GetAgents)
			r.Get("/stats", dashboardHandler.GetStats)
			r.Get("/queues", dashboardHandler.GetQueues)
			r.Get("/agents/{login}/history", historyHandler.GetHistory)

			r.Group(func(r chi.Router) {
				r.Use(api.RequireSupervisorOrAdmin)
				r.Post("/agents/{login}/pause", actionsHandler.Pause)
				r.Post("/agents/{login}/logout", actionsHandler.Logout)
				r.Post("/queues/refresh", queueAdminHandler.Refresh)
				r.Get("/transitions", historyHandler.GetDayTransitions)
			})

			r.Group(func(r chi.Router) {
				r.Use(api.RequireAdmin)
				r.Post("/admin/history/wipe", adminHandler.WipeHistory)
			})
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop feed listeners first so no events arrive mid-shutdown
	registry.ClearAll()
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"painel-backend"}`)
}
