// Package app wires configuration, storage and services into the HTTP server.
package app

import (
	"time"

	"sns/internal/config"
	"sns/internal/handlers"
	"sns/internal/middleware"
	"sns/internal/repositories"
	"sns/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	log "github.com/sirupsen/logrus"
)

// App is the assembled server.
type App struct {
	Fiber  *fiber.App
	Tokens *services.TokenService
	Users  *services.UserService
	Auth   *services.AuthService
}

// New builds the application. publisher and health may be nil.
func New(cfg *config.Config, userRepo repositories.UserRepository, publisher services.EventPublisher, health func() error) *App {
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	tokens := services.NewTokenService(cfg.SigningKey, cfg.JWTTTL)

	userService := services.NewUserService(userRepo, hasher, publisher)
	authService := services.NewAuthService(userRepo, hasher, tokens)

	loginLimit := middleware.NewRateLimiter(cfg.AuthRateLimitRPM).Handler()
	userHandler := handlers.NewUserHandler(userService, authService, tokens, loginLimit)

	app := fiber.New(fiber.Config{
		AppName:               "sns",
		DisableStartupMessage: true,
	})

	app.Use(logger.New())

	api := app.Group("/api")
	userHandler.RegisterRoutes(api)

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		if health != nil {
			if err := health(); err != nil {
				log.Warnf("Health check failed: %v", err)
				status = "unhealthy"
				code = fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return &App{
		Fiber:  app,
		Tokens: tokens,
		Users:  userService,
		Auth:   authService,
	}
}
