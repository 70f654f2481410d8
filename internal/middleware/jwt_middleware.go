package middleware

import (
	"strings"

	"boutique/internal/logger"
	"boutique/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by the auth middlewares.
const (
	LocalUserID      = "user_id"
	LocalUsername    = "username"
	LocalCustomerJWT = "customer_jwt"
)

// bearerToken extracts the token of a "Bearer <token>" Authorization header.
func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", "Authorization header is required"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "Authorization header format must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), ""
}

// AuthRequired is a Fiber middleware that admits dashboard operators holding
// a valid admin JWT.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, problem := bearerToken(c)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": problem,
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.FromCtx(c).Info("JWT validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUserID, claims["user_id"])
		c.Locals(LocalUsername, claims["username"])
		return c.Next()
	}
}

// CustomerToken requires a bearer token and stores it for forwarding to the
// CMS, which is the one that validates customer tokens.
func CustomerToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, problem := bearerToken(c)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": problem,
			})
		}
		c.Locals(LocalCustomerJWT, tokenString)
		return c.Next()
	}
}

// CustomerJWT returns the token stored by CustomerToken.
func CustomerJWT(c *fiber.Ctx) string {
	jwt, _ := c.Locals(LocalCustomerJWT).(string)
	return jwt
}
