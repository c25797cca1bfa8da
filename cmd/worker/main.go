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

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/lostfound/pkg/cache"
	"github.com/ghuser/lostfound/pkg/config"
	"github.com/ghuser/lostfound/pkg/database"
	"github.com/ghuser/lostfound/pkg/events"
	"github.com/ghuser/lostfound/pkg/httpx"
	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/pkg/telemetry"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
	"github.com/ghuser/lostfound/services/item/application/subscribers"
	"github.com/ghuser/lostfound/services/item/infrastructure/persistence/dynamo"
)

// The worker consumes item events from the durable SQL transport and keeps
// the Redis item cache in step with the store. It serves /health and
// /metrics on WORKER_ADDR.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	if cfg.EventsDatabaseURL == "" || cfg.RedisURL == "" {
		log.Error("worker requires EVENTS_DATABASE_URL and REDIS_URL")
		os.Exit(1)
	}
	if cfg.StoreBackend != config.BackendDynamo {
		log.Error("worker requires STORE_BACKEND=dynamo", "store", cfg.StoreBackend)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to dynamodb", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("dynamodb connected", "table", db.TableName())

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck

	items := appsvcs.NewItemService(
		dynamo.NewItemRepository(db, log),
		cache.NewItemCache(redisClient),
		log,
	)
	if err := subscribers.Register(ctx, eventBus, items, log); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	r := chi.NewRouter()
	r.Use(logger.Recovery(log))
	r.Get("/health", httpx.HealthHandler(httpx.HealthChecks{
		Store:    db,
		Redis:    redisClient,
		EventBus: eventBus,
	}))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	srv := httpx.NewServer(cfg.WorkerAddr, r)
	go func() {
		log.Info("worker listening", "addr", srv.Addr, "topics", subscribers.Topics)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("worker http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("worker http shutdown", "error", err)
	}
	// eventBus.Close, deferred above, waits for in-flight handlers.
	log.Info("worker stopped")
}
