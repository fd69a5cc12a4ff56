// utils/http.go - HTTP response helpers for Fiber handlers
package utils

import (
	"github.com/gofiber/fiber/v2"
)

// NoCache marks the response as never cacheable so an edit is visible on
// the next page load.
func NoCache(c *fiber.Ctx) {
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
}

// JSONError sends a JSON error response
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess sends a JSON success response
func JSONSuccess(c *fiber.Ctx, data fiber.Map) error {
	response := fiber.Map{
		"success": true,
	}

	// Merge data into response
	for k, v := range data {
		response[k] = v
	}

	return c.JSON(response)
}
