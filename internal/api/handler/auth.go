package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/api/dto"
	"github.com/infinitystorm/server/internal/pkg/errors"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/pkg/util"
)

// playerNamespace deterministically maps an external username onto a
// stable player ID, so the same username always authenticates as the
// same wallet/session without a separate player identity table — player
// identity/credential verification is out of scope here.
var playerNamespace = uuid.MustParse("6f9c6f1a-5b6e-4c2a-9b0a-9a6f2f7a5f10")

// AuthHandler issues the bearer JWT every other endpoint requires.
type AuthHandler struct {
	jwtSecret       string
	jwtExpiryHours  int
	logger          *logger.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(jwtSecret string, jwtExpiryHours int, log *logger.Logger) *AuthHandler {
	return &AuthHandler{jwtSecret: jwtSecret, jwtExpiryHours: jwtExpiryHours, logger: log}
}

// Login issues a bearer token for a username, provisioning the player's
// stable ID on first use.
// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errors.BadRequest("invalid request body"))
	}
	if len(req.Username) < 3 {
		return respondError(c, errors.BadRequest("username must be at least 3 characters"))
	}

	playerID := uuid.NewSHA1(playerNamespace, []byte(req.Username))

	token, err := util.GenerateJWT(playerID.String(), req.Username, nil, h.jwtSecret, h.jwtExpiryHours)
	if err != nil {
		log.Error().Err(err).Msg("auth: failed to sign token")
		return respondError(c, errors.InternalError("failed to issue token", err))
	}

	return c.JSON(dto.LoginResponse{
		Token:     token,
		PlayerID:  playerID.String(),
		ExpiresIn: h.jwtExpiryHours,
	})
}
