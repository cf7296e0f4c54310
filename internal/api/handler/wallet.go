package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/api/dto"
	"github.com/infinitystorm/server/internal/gamesession"
	"github.com/infinitystorm/server/internal/money"
	httperrors "github.com/infinitystorm/server/internal/pkg/errors"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/wallet"
)

// WalletHandler exposes balance, ledger, and admin adjustment endpoints.
type WalletHandler struct {
	wallet   *wallet.Service
	sessions *gamesession.Service
	logger   *logger.Logger
}

// NewWalletHandler constructs a WalletHandler.
func NewWalletHandler(w *wallet.Service, sessions *gamesession.Service, log *logger.Logger) *WalletHandler {
	return &WalletHandler{wallet: w, sessions: sessions, logger: log}
}

// Balance returns the authenticated player's current balance.
// GET /wallet/balance
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	playerID, ok := h.requirePlayerID(c)
	if !ok {
		return respondError(c, httperrors.Unauthorized("missing player identity"))
	}

	balance, err := h.wallet.GetBalance(c.Context(), playerID)
	if err != nil {
		return respondError(c, httperrors.InternalError("failed to load balance", err))
	}

	return c.JSON(dto.BalanceResponse{Balance: balance.String()})
}

// Transactions returns a page of the authenticated player's ledger entries.
// GET /wallet/transactions?page=&limit=
func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	playerID, ok := h.requirePlayerID(c)
	if !ok {
		return respondError(c, httperrors.Unauthorized("missing player identity"))
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

	txns, err := h.wallet.GetTransactions(c.Context(), playerID, limit, offset)
	if err != nil {
		return respondError(c, httperrors.InternalError("failed to load transactions", err))
	}

	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.TransactionFromModel(t))
	}

	return c.JSON(dto.TransactionsResponse{Transactions: out, Page: page, Limit: limit})
}

// Stats returns the authenticated player's balance plus lifetime wager/win
// totals tracked on their live game session.
// GET /wallet/stats
func (h *WalletHandler) Stats(c *fiber.Ctx) error {
	playerID, ok := h.requirePlayerID(c)
	if !ok {
		return respondError(c, httperrors.Unauthorized("missing player identity"))
	}

	balance, err := h.wallet.GetBalance(c.Context(), playerID)
	if err != nil {
		return respondError(c, httperrors.InternalError("failed to load balance", err))
	}

	session, err := h.sessions.GetOrCreate(c.Context(), playerID)
	if err != nil {
		return respondError(c, httperrors.InternalError("failed to load session stats", err))
	}

	return c.JSON(dto.StatsResponse{
		Balance:      balance.String(),
		TotalWagered: session.TotalWagered.String(),
		TotalWon:     session.TotalWon.String(),
	})
}

// Adjust applies a manual balance correction to an arbitrary player. The
// router registers it behind JWT auth and the per-user rate limiter only; no
// admin or operator role is checked, so any authenticated caller can adjust
// the balance of any player ID.
// POST /wallet/admin/adjust
func (h *WalletHandler) Adjust(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	var req dto.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, httperrors.BadRequest("invalid request body"))
	}
	targetID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		return respondError(c, httperrors.BadRequest("invalid playerId"))
	}
	if req.Reason == "" {
		return respondError(c, httperrors.BadRequest("reason is required"))
	}

	delta := money.FromFloat(req.Amount)
	balance, err := h.wallet.Adjust(c.Context(), targetID, delta, req.Reason)
	if err != nil {
		log.Error().Err(err).Str("target_player_id", targetID.String()).Msg("wallet: admin adjustment failed")
		return respondError(c, httperrors.InternalError("adjustment failed", err))
	}

	log.Info().Str("target_player_id", targetID.String()).Str("delta", delta.String()).Msg("wallet: admin adjustment applied")

	return c.JSON(dto.BalanceResponse{Balance: balance.String()})
}

func (h *WalletHandler) requirePlayerID(c *fiber.Ctx) (uuid.UUID, bool) {
	idStr, ok := playerIDFromLocals(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
