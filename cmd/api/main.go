package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/townhall/civic-service/internal/api/http"
	"github.com/townhall/civic-service/internal/api/http/handlers"
	"github.com/townhall/civic-service/internal/auth"
	"github.com/townhall/civic-service/internal/config"
	"github.com/townhall/civic-service/internal/events"
	"github.com/townhall/civic-service/internal/observability"
	"github.com/townhall/civic-service/internal/persistence"
	"github.com/townhall/civic-service/internal/ratelimit"
	"github.com/townhall/civic-service/internal/repository"
	"github.com/townhall/civic-service/internal/service"
	"github.com/townhall/civic-service/internal/storage"
	"github.com/townhall/civic-service/internal/worker"
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

	var objects storage.ObjectStore
	if cfg.ObjectStore.Enabled() {
		objects, err = storage.NewS3Store(ctx, cfg.ObjectStore)
		if err != nil {
			logger.Fatal("failed to init object store", zap.Error(err))
		}
	} else {
		logger.Warn("object store not configured, attachments held in memory")
		objects = storage.NewMemoryStore()
	}

	metrics := observability.NewMetrics()
	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	limiter := ratelimit.NewLimiter(redis.Client, time.Minute)

	authService := service.NewAuthService(*cfg, store, tokens, dispatcher)
	accountService := service.NewAccountService(store, dispatcher, metrics)
	officialService := service.NewOfficialService(store)
	townService := service.NewTownService(store)
	townChangeService := service.NewTownChangeService(store, dispatcher)
	complaintService := service.NewComplaintService(store, objects, dispatcher)
	licenseService := service.NewLicenseService(store, dispatcher)
	announcementService := service.NewAnnouncementService(store)
	billService := service.NewBillService(store)
	eventService := service.NewEventService(store, dispatcher)
	notificationService := service.NewNotificationService(store, dispatcher, logger)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokens, store)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Officials:      handlers.NewOfficialsHandler(officialService),
		Towns:          handlers.NewTownsHandler(townService),
		TownChanges:    handlers.NewTownChangesHandler(townChangeService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Licenses:       handlers.NewLicensesHandler(licenseService),
		Announcements:  handlers.NewAnnouncementsHandler(announcementService),
		Bills:          handlers.NewBillsHandler(billService),
		Events:         handlers.NewEventsHandler(eventService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
		Limiter:        limiter,
		RateLimit:      cfg.RateLimit,
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
