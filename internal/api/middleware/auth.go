package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/infinitystorm/server/internal/pkg/errors"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/pkg/util"
)

// JWTAuthMiddleware validates a bearer JWT and stores the authenticated
// player's ID in context for downstream handlers and the WebSocket
// upgrade to consume. The token's exact wire format is out of scope; this
// is the minimal mechanism needed to attribute every spin/history/wallet
// request to one player.
func JWTAuthMiddleware(secret string, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return respondError(c, errors.Unauthorized("missing authorization header"))
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return respondError(c, errors.Unauthorized("invalid authorization header format"))
		}

		claims, err := util.ValidateJWT(parts[1], secret)
		if err != nil {
			log.Warn().Err(err).Str("ip", c.IP()).Msg("auth: token validation failed")
			return respondError(c, errors.Unauthorized("invalid or expired token"))
		}

		c.Locals("playerID", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}

// respondError sends an error response.
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
