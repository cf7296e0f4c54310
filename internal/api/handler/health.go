package handler

import "github.com/gofiber/fiber/v2"

// Health reports liveness for load balancers and orchestrators.
// GET /health
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"status": "healthy",
		},
	})
}
