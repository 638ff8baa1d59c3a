package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/comments"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	logging.Setup(cfg.AppEnv, dbLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Notifications: stored for the in-app feed, optionally fanned out to a
	// Redis stream for push workers.
	store := notify.NewStore(database.DB)
	sinks := []notify.Sink{store}
	var publisher *notify.RedisPublisher
	if cfg.RedisURL != "" {
		p, err := notify.NewRedisPublisher(cfg.RedisURL, cfg.NotificationStream)
		if err != nil {
			slog.Error("redis publisher disabled", "error", err)
		} else {
			publisher = p
			sinks = append(sinks, publisher)
		}
	}
	dispatcher := notify.NewDispatcher(cfg.NotificationBuffer, sinks...)

	// Services
	userService := services.NewUserService(database.DB)
	socialService := services.NewSocialService(database.DB, cfg, dispatcher)
	listService := services.NewListService(database.DB, cfg)
	ratingService := services.NewRatingService(database.DB, dispatcher)
	reviewService := services.NewReviewService(database.DB, cfg, dispatcher)
	messageService := services.NewMessageService(database.DB, cfg, dispatcher)
	moderationService := services.NewModerationService(database.DB)
	commentService := comments.NewService(database.DB, dispatcher,
		comments.WithRenderDepth(cfg.CommentRenderDepth),
		comments.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
	)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, routes.Handlers{
		Health:        handlers.NewHealthHandler(database.Ping),
		Users:         handlers.NewUserHandler(userService),
		Social:        handlers.NewSocialHandler(socialService),
		Lists:         handlers.NewListHandler(listService, ratingService),
		Comments:      handlers.NewCommentHandler(commentService),
		Reviews:       handlers.NewReviewHandler(reviewService),
		Messages:      handlers.NewMessageHandler(messageService),
		Notifications: handlers.NewNotificationHandler(store),
		Moderation:    handlers.NewModerationHandler(moderationService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Drain queued notifications before closing their sinks.
	dispatcher.Stop()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
