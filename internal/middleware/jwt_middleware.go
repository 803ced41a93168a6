package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// UsernameKey is the fiber.Ctx Locals key holding the authenticated username.
const UsernameKey = "username"

// TokenValidator recovers the subject of a bearer token.
type TokenValidator interface {
	SubjectOf(token string) (string, error)
}

// AuthRequired is a Fiber middleware to check for a valid bearer token.
func AuthRequired(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		username, err := tokens.SubjectOf(parts[1])
		if err != nil {
			log.Debugf("token validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(UsernameKey, username)
		return c.Next()
	}
}

// CurrentUsername returns the username stored by AuthRequired, if any.
func CurrentUsername(c *fiber.Ctx) (string, bool) {
	username, ok := c.Locals(UsernameKey).(string)
	return username, ok && username != ""
}
