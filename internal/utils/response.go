package utils

import (
	"github.com/gofiber/fiber/v2"
)

// MessageResponse sends the {message} envelope every error and most mutation
// acknowledgements use. Messages are user-facing and localized.
func MessageResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}

// NotFoundResponse sends a 404 with a localized message
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return MessageResponse(c, fiber.StatusNotFound, message)
}

// ValidationResponse sends a 400 with a localized message
func ValidationResponse(c *fiber.Ctx, message string) error {
	return MessageResponse(c, fiber.StatusBadRequest, message)
}

// StoreErrorResponse sends the generic 500. Raw store error text never
// reaches the client.
func StoreErrorResponse(c *fiber.Ctx) error {
	return MessageResponse(c, fiber.StatusInternalServerError, "Erreur de base de données")
}

// ForbiddenResponse sends a 403 with a localized message
func ForbiddenResponse(c *fiber.Ctx, message string) error {
	return MessageResponse(c, fiber.StatusForbidden, message)
}

// ListResponse sends the {results, count} envelope used by every collection
// endpoint.
func ListResponse(c *fiber.Ctx, results interface{}, count int) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"results": results,
		"count":   count,
	})
}

// MessageResponseStruct defines the schema for message responses
type MessageResponseStruct struct {
	Message string `json:"message"`
}
