package handlers

import (
	"errors"
	"reflect"
	"strings"

	"sns/internal/middleware"
	"sns/internal/models"
	"sns/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=4,max=50"`
	Email    string `json:"email" validate:"required,max=100,email"`
	Password string `json:"password" validate:"required,min=8,bcryptmax"`
	Nickname string `json:"nickname" validate:"omitempty,max=50"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
	tokens      middleware.TokenValidator
	loginLimit  fiber.Handler
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler. loginLimit may be nil.
func NewUserHandler(userService *services.UserService, authService *services.AuthService, tokens middleware.TokenValidator, loginLimit fiber.Handler) *UserHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt rejects input over 72 bytes; max= would count runes.
	if err := validate.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= services.MaxPasswordBytes
	}); err != nil {
		panic(err)
	}

	if loginLimit == nil {
		loginLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	return &UserHandler{
		userService: userService,
		authService: authService,
		tokens:      tokens,
		loginLimit:  loginLimit,
		validate:    validate,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
// /userInfo must be registered before /:username.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Post("/signup", h.HandleSignup)
	users.Post("/login", h.loginLimit, h.HandleLogin)
	users.Get("/userInfo", middleware.AuthRequired(h.tokens), h.HandleUserInfo)
	users.Get("/:username", h.HandleGetUser)
}

// HandleSignup handles new user registration.
func (h *UserHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Debugf("Error parsing signup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
	}

	profile, err := h.userService.Register(services.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) || errors.Is(err, models.ErrDuplicateEmail) {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		log.Errorf("Error registering user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	return c.JSON(profile)
}

// HandleLogin handles user login and issues an access token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Debugf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	// Blank fields get the same answer as bad credentials.
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusUnauthorized).SendString(models.ErrAuthenticationFailed.Error())
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrAuthenticationFailed) {
			log.Infof("Login failed for user %s", req.Username)
			return c.Status(fiber.StatusUnauthorized).SendString(models.ErrAuthenticationFailed.Error())
		}
		log.Errorf("Error during login for user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log in",
		})
	}

	return c.JSON(LoginResponse{AccessToken: token})
}

// HandleGetUser returns the public profile for the username in the path.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	profile, err := h.userService.GetByUsername(c.Params("username"))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// SendStatus would fill in a "Not Found" body.
			return c.Status(fiber.StatusNotFound).Send(nil)
		}
		log.Errorf("Error getting user %s: %v", c.Params("username"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
		})
	}
	return c.JSON(profile)
}

// HandleUserInfo returns the profile of the authenticated caller.
func (h *UserHandler) HandleUserInfo(c *fiber.Ctx) error {
	username, ok := middleware.CurrentUsername(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	profile, err := h.userService.GetByUsername(username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Valid token for an account that no longer exists.
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		log.Errorf("Error getting user info for %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
		})
	}
	return c.JSON(profile)
}
