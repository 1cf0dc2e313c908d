package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workly-web/internal/di"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port            string        `env:"SERVER_PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	logger.SetDefault(appLogger)

	cfg, err := di.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger.Info("Application configuration loaded successfully")

	appMetrics := metrics.NewDefault()
	container := di.NewContainer(appLogger, appMetrics)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.WithFields(logger.ZapFields(zap.Error(err))).Error("Failed to close container")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := container.InitializeInfrastructure(initCtx, cfg); err != nil {
		initCancel()
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	initCancel()

	if err := container.InitializeModules(ctx, cfg); err != nil {
		log.Fatalf("Failed to initialize modules: %v", err)
	}
	appLogger.Info("Session, auth and workspace modules initialized")

	app := fiber.New(fiber.Config{
		AppName:      "Workly Web",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: apperrors.FiberErrorHandler(appLogger),
	})

	authMiddleware := container.AuthModule.GetMiddleware()

	app.Use(recover.New())
	app.Use(authMiddleware.RequestID())
	app.Use(authMiddleware.SecurityHeaders())
	app.Use(authMiddleware.CORS())
	app.Use(appMetrics.Middleware())

	// Registered before the client context so health checks never receive cookies.
	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.WithFields(logger.ZapFields(zap.Error(err))).Error("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "One or more services are unhealthy",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
			"modules": fiber.Map{
				"session":   cfg.Session.Storage,
				"auth":      "initialized",
				"workspace": "initialized",
			},
		})
	})
	app.Get("/metrics", appMetrics.Handler())

	app.Use(authMiddleware.ClientContext())
	app.Use(container.SessionModule.Middleware().Load())
	app.Use(authMiddleware.RouteGuard())

	container.SessionModule.RegisterRoutes(app)
	container.AuthModule.RegisterRoutes(app)
	container.WorkspaceModule.RegisterRoutes(app)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("All modules initialized. Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.WithFields(logger.ZapFields(zap.Error(err))).Error("Server failed to start")
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.WithFields(logger.ZapFields(zap.Error(err))).Error("Server forced to shutdown")
		}
		appLogger.Info("HTTP server stopped")
	}
}
