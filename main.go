package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"gerai/internal/config"
	"gerai/internal/database"
	"gerai/internal/handlers"
	"gerai/internal/middleware"
	"gerai/internal/repositories"
	"gerai/internal/services"
	"gerai/pkg/events"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	// --- Persistence Connector ---
	// Connectivity is established lazily; a failure here is logged and the
	// readiness gate retries on each incoming request.
	connector := database.NewConnector(cfg.MongoURI, cfg.MongoDB, logger)
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := connector.Connect(connectCtx); err != nil {
		logger.Warn().Err(err).Msg("initial database connection failed, will retry per request")
	}
	cancel()

	// --- Event Publisher (optional) ---
	var mqClient *events.Client
	if cfg.RabbitMQURL != "" {
		client, err := events.NewClient(events.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			logger.Warn().Err(err).Msg("event publishing disabled: RabbitMQ unavailable")
		} else {
			mqClient = client
			defer mqClient.Close()
		}
	}

	// --- Repositories / Services / Handlers ---
	productRepo := repositories.NewMongoProductRepository(connector)
	productService := services.NewProductService(productRepo, mqClient, logger)
	productHandler := handlers.NewProductHandler(productService, logger)

	// --- Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New()) // allow all origins

	// --- Routes ---
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Product API is running")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Every data-accessing route sits behind the readiness gate.
	api := app.Group("/api", middleware.DatabaseReady(connector, logger))
	productHandler.RegisterRoutes(api)

	// --- Start HTTP Server ---
	logger.Info().Str("port", cfg.AppPort).Msg("starting server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	logger.Info().Msg("shutting down server")

	if err := app.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := connector.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during database disconnect")
	}

	logger.Info().Msg("server gracefully stopped")
}
