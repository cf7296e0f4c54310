package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/api/dto"
	"github.com/infinitystorm/server/internal/gamesession"
	"github.com/infinitystorm/server/internal/money"
	httperrors "github.com/infinitystorm/server/internal/pkg/errors"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/wallet"
)

// SpinHandler exposes the C6 orchestrator over HTTP.
type SpinHandler struct {
	sessions *gamesession.Service
	logger   *logger.Logger
}

// NewSpinHandler constructs a SpinHandler.
func NewSpinHandler(sessions *gamesession.Service, log *logger.Logger) *SpinHandler {
	return &SpinHandler{sessions: sessions, logger: log}
}

// ExecuteSpin runs one spin for the authenticated player.
// POST /spin
func (h *SpinHandler) ExecuteSpin(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	playerIDStr, ok := playerIDFromLocals(c)
	if !ok {
		return respondError(c, httperrors.Unauthorized("missing player identity"))
	}
	playerID, err := uuid.Parse(playerIDStr)
	if err != nil {
		return respondError(c, httperrors.Unauthorized("invalid player identity"))
	}

	var req dto.SpinRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, httperrors.BadRequest("invalid request body"))
	}
	if req.Bet <= 0 {
		return respondError(c, httperrors.InvalidBetAmount("bet must be positive"))
	}

	bet := money.FromFloat(req.Bet)

	outcome, err := h.sessions.Spin(c.Context(), playerID, bet)
	if err != nil {
		return respondError(c, translateSpinError(err))
	}

	log.Info().
		Str("player_id", playerID.String()).
		Str("spin_id", outcome.Result.ID.String()).
		Str("total_win", outcome.Result.TotalWin.String()).
		Msg("spin executed")

	return c.JSON(dto.SpinFromOutcome(outcome.Result, outcome.FreeSpinsActive, outcome.FreeSpinsRemaining, outcome.FreeSpinsTotal))
}

// History returns a page of the authenticated player's spin history.
// GET /history/spins?page=&limit=&order=
func (h *SpinHandler) History(c *fiber.Ctx) error {
	playerIDStr, ok := playerIDFromLocals(c)
	if !ok {
		return respondError(c, httperrors.Unauthorized("missing player identity"))
	}
	playerID, err := uuid.Parse(playerIDStr)
	if err != nil {
		return respondError(c, httperrors.Unauthorized("invalid player identity"))
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit

	results, total, err := h.sessions.History(c.Context(), playerID, limit, offset)
	if err != nil {
		return respondError(c, httperrors.InternalError("failed to load spin history", err))
	}

	spins := make([]dto.SpinResponse, 0, len(results))
	for i := range results {
		spins = append(spins, dto.SpinFromOutcome(&results[i], false, 0, 0))
	}

	return c.JSON(dto.SpinHistoryResponse{
		Spins: spins,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func translateSpinError(err error) *httperrors.HTTPError {
	switch {
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return httperrors.New(400, httperrors.ErrInsufficientFunds, "insufficient balance for bet amount")
	case errors.Is(err, gamesession.ErrInvalidBet):
		return httperrors.InvalidBetAmount("bet amount outside allowed range")
	case errors.Is(err, gamesession.ErrSpinInProgress):
		return httperrors.New(409, httperrors.ErrInvalidRequest, "a spin is already in progress for this player")
	case errors.Is(err, gamesession.ErrNotFound):
		return httperrors.SessionNotFound("")
	default:
		return httperrors.EngineFatal(fmt.Errorf("spin: %w", err))
	}
}
