package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-engine/internal/api/http"
	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/service"
	"github.com/spec-kit/sla-engine/internal/sla"
	"github.com/spec-kit/sla-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var tickets repository.TicketSource
	if pool := pg.PoolHandle(); pool != nil {
		tickets = repository.NewPostgresTicketSource(pool)
	} else {
		logger.Warn("no ticket store configured; using empty in-memory source")
		tickets = repository.NewMemoryTicketSource()
	}

	clock := sla.SystemClock()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	registry := sla.NewPolicyRegistry(clock)
	calculator := sla.NewMetricsCalculator(registry, clock, cfg.SLA.ElapsedOverrunBreach)
	tracker := sla.NewBreachTracker(clock)
	trigger := sla.NewEscalationTrigger(registry)
	aggregator := sla.NewReportAggregator(calculator, clock)

	slaService := service.NewSLAService(service.SLADependencies{
		Registry:   registry,
		Calculator: calculator,
		Tracker:    tracker,
		Trigger:    trigger,
		Aggregator: aggregator,
		Tickets:    tickets,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, tracker, redis, metrics, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(tokenManager, cfg.Auth),
		Policies:       handlers.NewPoliciesHandler(slaService),
		SLA:            handlers.NewSLAHandler(slaService),
		AuthMiddleware: authMiddleware,
	})

	scanWorker := worker.NewScanWorker(slaService, cfg.SLA.ScanInterval(), cfg.SLA.ScanTimeout(), logger)
	scanWorker.Start(ctx)
	defer scanWorker.Stop()

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
