package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/medops-hub/workorder-service/internal/api/http"
	"github.com/medops-hub/workorder-service/internal/api/http/handlers"
	"github.com/medops-hub/workorder-service/internal/auth"
	"github.com/medops-hub/workorder-service/internal/config"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/observability"
	"github.com/medops-hub/workorder-service/internal/persistence"
	"github.com/medops-hub/workorder-service/internal/repository"
	"github.com/medops-hub/workorder-service/internal/service"
	"github.com/medops-hub/workorder-service/internal/worker"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewServiceLogger(cfg.Logger, cfg.App)
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

	metrics := observability.NewMetrics()
	engine := workflow.New(workflow.Policy{
		AutoCloseWindow:     cfg.Workflow.AutoCloseWindow(),
		AllowAdminFastTrack: cfg.Workflow.AllowAdminFastTrack,
	})
	dispatcher := events.NewInMemoryDispatcher(logger)

	pool := pg.PoolHandle()
	workOrderRepo := repository.NewWorkOrderRepository(pool)
	updateLogRepo := repository.NewUpdateLogRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)

	workOrderService := service.NewWorkOrderService(service.WorkOrderDependencies{
		WorkOrderRepo: workOrderRepo,
		UpdateLogRepo: updateLogRepo,
		TeamRepo:      teamRepo,
		Engine:        engine,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})
	autoCloseService := service.NewAutoCloseService(service.AutoCloseDependencies{
		WorkOrderRepo: workOrderRepo,
		UpdateLogRepo: updateLogRepo,
		Engine:        engine,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
		BatchSize:     cfg.Workflow.SweepBatchSize,
	})

	sinks := service.Sinks(
		service.NewEmailSink(cfg.Notification, logger),
		service.NewWebhookSink(cfg.Notification, logger),
	)
	if cfg.Notification.KafkaEnabled() {
		publisher, err := events.NewKafkaPublisher(cfg.Notification.KafkaBrokers, logger)
		if err != nil {
			logger.Error("kafka notifications disabled", zap.Error(err))
		} else {
			defer publisher.Close() //nolint:errcheck
			sinks = append(sinks, service.NewKafkaSink(publisher, cfg.Notification.KafkaTopic))
		}
	}
	notificationService := service.NewNotificationService(logger, sinks...)

	notificationWorker := worker.NewNotificationWorker(notificationService.Handle, cfg.Notification.QueueSize, cfg.Notification.Workers, logger)
	notificationWorker.Register(dispatcher)
	if err := notificationWorker.Start(ctx); err != nil {
		logger.Fatal("failed to start worker", zap.String("worker", notificationWorker.Name()), zap.Error(err))
	}

	locker := redis.Locker(cfg.App.Name)
	autoCloseWorker := worker.NewAutoCloseWorker(autoCloseService, locker, cfg.Workflow.SweepInterval(), logger)
	if err := autoCloseWorker.Start(ctx); err != nil {
		logger.Fatal("failed to start worker", zap.String("worker", autoCloseWorker.Name()), zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, 0)
	authMiddleware := auth.NewAuthMiddleware(tokens, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			handlers.Dependency{Name: "postgres", Pinger: pg},
			handlers.Dependency{Name: "redis", Pinger: redis},
		),
		WorkOrders:       handlers.NewWorkOrdersHandler(workOrderService),
		Teams:            handlers.NewTeamsHandler(service.NewTeamService(teamRepo)),
		System:           handlers.NewSystemHandler(autoCloseService, metrics),
		AuthMiddleware:   authMiddleware,
		SchedulerKeyHash: cfg.Auth.SchedulerKeyHash,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	autoCloseWorker.Stop()
	notificationWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
