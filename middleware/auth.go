// middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"shelleylegion/services"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrBadAuthHeader     = errors.New("invalid authorization header format")
)

// TokenVerifier checks an admin bearer token.
type TokenVerifier interface {
	Verify(token string) (*services.AdminClaims, error)
}

// AdminAuthMiddleware rejects requests without a valid admin bearer token
// and stores the verified claims in the request locals.
func AdminAuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := BearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": err.Error()})
		}

		claims, err := verifier.Verify(tokenString)
		if errors.Is(err, services.ErrNotAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Access denied. Admin privileges required."})
		}
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
		}

		c.Locals("username", claims.Username)
		c.Locals("isAdmin", true)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrBadAuthHeader
	}
	return parts[1], nil
}

func GetUsername(c *fiber.Ctx) (string, error) {
	username := c.Locals("username")
	if username == nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
	}

	if name, ok := username.(string); ok {
		return name, nil
	}

	return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid username format")
}

func GetClaims(c *fiber.Ctx) *services.AdminClaims {
	claims, _ := c.Locals("claims").(*services.AdminClaims)
	return claims
}
