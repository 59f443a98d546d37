package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"dealdrip/config"
	"dealdrip/drip"
	"dealdrip/middleware"
	"dealdrip/routes"
	"dealdrip/utils"
	"dealdrip/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "DEALDRIP: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry when a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Initialize transports
	mailer := utils.NewMailer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)
	texter := utils.NewTwilioClient(
		config.AppConfig.Twilio.AccountSID,
		config.AppConfig.Twilio.AuthToken,
		config.AppConfig.Twilio.FromNumber,
	)

	// Initialize and start the job dispatcher
	store := drip.NewGormStore(config.DB)
	lifecycle := drip.NewLifecycle(store, log.New(os.Stdout, "LIFECYCLE: ", log.LstdFlags))
	dispatcher := worker.NewDispatcher(store, lifecycle, mailer, texter, log.New(os.Stdout, "DISPATCH: ", log.LstdFlags))
	dispatcher.Interval = time.Duration(config.AppConfig.DispatchInterval) * time.Second
	dispatcher.BatchSize = config.AppConfig.DispatchBatchSize
	dispatcher.FromEmail = config.AppConfig.FromEmail

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("Starting server on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}
