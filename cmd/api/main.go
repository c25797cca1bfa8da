package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/lostfound/docs/swagger"
	"github.com/ghuser/lostfound/pkg/app"
	"github.com/ghuser/lostfound/pkg/auth"
	"github.com/ghuser/lostfound/pkg/cache"
	"github.com/ghuser/lostfound/pkg/config"
	"github.com/ghuser/lostfound/pkg/database"
	"github.com/ghuser/lostfound/pkg/events"
	"github.com/ghuser/lostfound/pkg/httpx"
	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/pkg/telemetry"
	itemApi "github.com/ghuser/lostfound/services/item/application/api"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
	"github.com/ghuser/lostfound/services/item/application/subscribers"
)

// requestOverhead is the body allowance on top of the image limit for the
// base64 expansion and the JSON text fields.
const requestOverhead = 64 << 10

// @title					Campus Lost & Found API
// @version				1.0
// @description			Lost and found reports, search and case management for campus items.
// @termsOfService			http://swagger.io/terms/
// @contact.name			API Support
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
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

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	metrics, err := telemetry.NewItemMetrics()
	if err != nil {
		log.Error("failed to create item metrics", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}

	appConfig := &app.Application{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
	}
	health := httpx.HealthChecks{}

	if cfg.StoreBackend == config.BackendDynamo {
		db, err := database.New(ctx, cfg, log)
		if err != nil {
			log.Error("failed to connect to dynamodb", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		appConfig.Db = db
		health.Store = db
		log.Info("dynamodb connected", "table", db.TableName())
	} else {
		log.Warn("using in-memory item store; data is lost on restart")
	}

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck
	appConfig.EventBus = eventBus
	health.EventBus = eventBus

	var sessionStore sessions.Store
	secureCookie := cfg.Environment == config.EnvProduction
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer redisClient.Close() //nolint:errcheck
		appConfig.Redis = redisClient
		health.Redis = redisClient
		log.Info("redis connected")

		sessionStore = auth.NewSessionStore(
			redisClient.Client(),
			[]byte(cfg.SessionAuthKey),
			[]byte(cfg.SessionEncryptionKey),
			secureCookie,
		)
		log.Info("session store initialized", "backend", "redis")
	} else {
		sessionStore = auth.NewCookieSessionStore(
			[]byte(cfg.SessionAuthKey),
			[]byte(cfg.SessionEncryptionKey),
			secureCookie,
		)
		log.Info("session store initialized", "backend", "cookie")
	}
	appConfig.SessionStore = sessionStore

	checker, err := auth.NewPasswordChecker(cfg.AdminPassword)
	if err != nil {
		log.Error("failed to initialize admin credentials", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	svcs, err := appsvcs.New(ctx, appConfig)
	if err != nil {
		log.Error("failed to wire item services", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	if pinger, ok := svcs.Blobs.(httpx.HealthChecker); ok {
		health.Blob = pinger
	}

	// Without a durable transport no worker sees our events; keep the cache
	// fresh from this process instead.
	if cfg.EventsDatabaseURL == "" && appConfig.Redis != nil {
		if err := subscribers.Register(ctx, eventBus, svcs.Item, log); err != nil {
			log.Error("failed to register in-process subscribers", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	}

	maxImage, _ := cfg.MaxImageBytes() // validated by config.Load
	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			MaxBodyBytes:       maxImage*4/3 + requestOverhead,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(health))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig, svcs, checker)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment,
			"store", cfg.StoreBackend, "blob", cfg.BlobBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
func registerRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services, checker *auth.PasswordChecker) {
	itemApi.ItemRoutes(r, a, svcs, checker)
}
