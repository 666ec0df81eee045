package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tracker-bot/internal/api/http"
	"github.com/spec-kit/tracker-bot/internal/api/http/handlers"
	"github.com/spec-kit/tracker-bot/internal/auth"
	"github.com/spec-kit/tracker-bot/internal/bot"
	"github.com/spec-kit/tracker-bot/internal/config"
	"github.com/spec-kit/tracker-bot/internal/events"
	"github.com/spec-kit/tracker-bot/internal/oauth"
	"github.com/spec-kit/tracker-bot/internal/observability"
	"github.com/spec-kit/tracker-bot/internal/persistence"
	"github.com/spec-kit/tracker-bot/internal/repository"
	"github.com/spec-kit/tracker-bot/internal/service"
	"github.com/spec-kit/tracker-bot/internal/tracker"
	"github.com/spec-kit/tracker-bot/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	trackerClient := tracker.NewJiraClient(cfg.Jira)
	tokenRepo := repository.NewTokenRepository(pg.PoolHandle())

	lookupService := service.NewLookupService(trackerClient, cfg.Bot.ReplyTemplate, logger)
	commentService := service.NewCommentService(trackerClient, dispatcher, logger)
	resolutionService := service.NewResolutionService(trackerClient, dispatcher, logger)
	tokenService := service.NewTokenService(cfg.OAuth, oauth.Endpoints{
		RequestTokenURL: cfg.Jira.RequestTokenURL(),
		AuthorizeURL:    cfg.Jira.AuthorizeURL(),
		AccessTokenURL:  cfg.Jira.AccessTokenURL(),
	}, service.TokenDependencies{
		TokenRepo:  tokenRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	cooldown := bot.NewRedisCooldown(redis.Client, cfg.Bot.SnarfCooldown(), logger)
	engine, err := bot.NewEngine(cfg.Bot, bot.EngineDependencies{
		Lookups:     lookupService,
		Comments:    commentService,
		Resolutions: resolutionService,
		Tokens:      tokenService,
		Cooldown:    cooldown,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to build bot engine", zap.Error(err))
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	messagesHandler := handlers.NewMessagesHandler(engine)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Messages:       messagesHandler,
		AuthMiddleware: authMiddleware,
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
