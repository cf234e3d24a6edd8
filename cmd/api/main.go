package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/taskboard-service/internal/api/http"
	"github.com/spec-kit/taskboard-service/internal/api/http/handlers"
	"github.com/spec-kit/taskboard-service/internal/auth"
	"github.com/spec-kit/taskboard-service/internal/config"
	"github.com/spec-kit/taskboard-service/internal/events"
	"github.com/spec-kit/taskboard-service/internal/mailer"
	"github.com/spec-kit/taskboard-service/internal/observability"
	"github.com/spec-kit/taskboard-service/internal/persistence"
	"github.com/spec-kit/taskboard-service/internal/ratelimit"
	"github.com/spec-kit/taskboard-service/internal/repository"
	"github.com/spec-kit/taskboard-service/internal/service"
	"github.com/spec-kit/taskboard-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger))

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Mailer:     mailer.New(cfg.Mailer, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	taskService := service.NewTaskService(taskRepo, dispatcher)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	cookies := auth.NewSessionCookies(cfg.App.IsProduction(), authService.TokenManager().TTL())

	limiter := ratelimit.NewSlidingWindow(redis.Client, cfg.RateLimit.Requests, cfg.RateLimit.Window())
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cookies),
		Tasks:          handlers.NewTasksHandler(taskService),
		AuthMiddleware: authMiddleware,
		RateLimiter:    ratelimit.Middleware(limiter, cfg.RateLimit.Requests, logger),
	})

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
