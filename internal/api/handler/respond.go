package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infinitystorm/server/internal/pkg/errors"
)

// respondError writes the standard error envelope every handler shares.
func respondError(c *fiber.Ctx, err *errors.HTTPError) error {
	return c.Status(err.StatusCode).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    err.Code,
			"message": err.Message,
			"details": err.Details,
		},
	})
}

// playerIDFromLocals extracts the authenticated player's UUID from context,
// set by middleware.JWTAuthMiddleware.
func playerIDFromLocals(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("playerID").(string)
	return id, ok && id != ""
}
