package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/librarium/library-backend-go/librarystore"
)

const internalErrorMessage = "internal server error"

// statusCodeFor maps a store error onto an HTTP status code.
func statusCodeFor(err error) int {
	switch {
	case librarystore.IsNotFound(err):
		return fiber.StatusNotFound
	case librarystore.IsClientFault(err):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// storeError renders a store error as a JSON error response.
// Internal failures are not leaked to the client.
func storeError(c *fiber.Ctx, err error) error {
	code := statusCodeFor(err)
	if code == fiber.StatusInternalServerError {
		return c.Status(code).JSON(fiber.Map{"error": internalErrorMessage})
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// badRequest renders a decode or validation failure as a 400 response.
func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
