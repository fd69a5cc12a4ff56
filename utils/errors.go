// utils/errors.go - Maps content service errors onto HTTP responses
package utils

import (
	"errors"
	"log"

	"shelleylegion/services"

	"github.com/gofiber/fiber/v2"
)

// RespondError writes the JSON response for an error returned by the
// content store. Errors it does not recognise go to the app ErrorHandler.
func RespondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":  false,
			"error":    "Validation failed",
			"document": verr.Document,
			"fields":   verr.Fields,
		})
	case errors.Is(err, services.ErrUnknownDocument):
		return JSONError(c, fiber.StatusNotFound, "Unknown content document")
	case errors.Is(err, services.ErrEntryNotFound):
		return JSONError(c, fiber.StatusNotFound, "Entry not found")
	case errors.Is(err, services.ErrNotList):
		return JSONError(c, fiber.StatusBadRequest, "Document has no entries; replace it as a whole")
	case errors.Is(err, services.ErrConflict):
		return JSONError(c, fiber.StatusConflict, "Content was changed by someone else. Reload and retry.")
	case errors.Is(err, services.ErrStorage):
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return JSONError(c, fiber.StatusBadGateway, "Content storage is unavailable. Please try again later.")
	}
	return err
}
