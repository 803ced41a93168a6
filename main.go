package main

import (
	"os"
	"os/signal"
	"syscall"

	"sns/internal/app"
	"sns/internal/config"
	"sns/internal/database"
	"sns/internal/logging"
	"sns/internal/repositories"
	"sns/internal/services"
	"sns/pkg/rabbitmq"

	log "github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	cfg.WarnInsecureDefaults()

	// --- Credential store ---
	userRepo, health, closeStore, err := openRepository(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open %s user store: %v", cfg.DBDriver, err)
	}
	defer closeStore()

	// --- Account events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.Warnf("Error closing RabbitMQ client: %v", err)
			}
		}()
		publisher = mqClient

		log.Info("Starting RabbitMQ consumer for user events...")
		if err := mqClient.ConsumeUserEvents(rabbitmq.LogUserEvent); err != nil {
			log.Errorf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Info("RABBITMQ_URL is not set; user events are disabled")
	}

	server := app.New(cfg, userRepo, publisher, health)

	// --- Start HTTP Server ---
	log.Infof("Starting server on %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := server.Fiber.Shutdown(); err != nil {
		log.Errorf("Error during Fiber shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}

// openRepository returns the user store for driver, a health probe for it
// and a function releasing its resources.
func openRepository(driver, dsn string) (repositories.UserRepository, func() error, func(), error) {
	if driver == "memory" {
		log.Warn("Using the in-memory user store; accounts are lost on restart")
		return repositories.NewInMemoryUserRepository(), nil, func() {}, nil
	}

	db, err := database.Open(driver, dsn)
	if err != nil {
		return nil, nil, nil, err
	}

	health := func() error { return database.Ping(db) }
	closeStore := func() {
		if err := database.Close(db); err != nil {
			log.Warnf("Error closing database: %v", err)
		}
	}
	return repositories.NewGORMUserRepository(db), health, closeStore, nil
}
