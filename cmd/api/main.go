package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/resume-service/internal/api/http"
	"github.com/spec-kit/resume-service/internal/api/http/handlers"
	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/observability"
	"github.com/spec-kit/resume-service/internal/ownership"
	"github.com/spec-kit/resume-service/internal/persistence"
	"github.com/spec-kit/resume-service/internal/ratelimit"
	"github.com/spec-kit/resume-service/internal/repository"
	"github.com/spec-kit/resume-service/internal/resetcode"
	"github.com/spec-kit/resume-service/internal/service"
	"github.com/spec-kit/resume-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := pflag.String("env-file", "", "path to a dotenv file (defaults to .env when present)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.DB(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(pg.DB())
	resumeRepo := repository.NewResumeRepository(pg.DB())

	tokens, err := auth.NewTokenService(cfg.Auth, auth.WithMetrics(metrics))
	if err != nil {
		logger.Fatal("invalid auth configuration", zap.Error(err))
	}

	notifications := worker.StartNotificationWorker(cfg.Notification, service.LogMailer{Logger: logger}, logger)
	dispatcher := notifications.Dispatcher()

	authService := service.NewAuthService(cfg.Auth, userRepo, tokens, dispatcher, logger)
	resets := resetcode.NewService(resetcode.NewRedisStore(redis.Client), userRepo, dispatcher, cfg.Auth, logger,
		resetcode.WithMetrics(metrics))
	resumeService := service.NewResumeService(resumeRepo, ownership.NewGuard(metrics))

	cookies := auth.CookieWriter{
		Secure:     cfg.Auth.CookieSecure,
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService, resets, cookies),
		Users:          handlers.NewUsersHandler(authService, cookies),
		Resumes:        handlers.NewResumesHandler(resumeService),
		Identity:       auth.NewIdentityMiddleware(tokens, cfg.Auth.PublicPaths, logger),
		Limiter:        ratelimit.NewKeyedLimiter(cfg.RateLimit),
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := notifications.Stop(shutdownCtx); err != nil {
		logger.Warn("notification queue not drained", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
