package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infinitystorm/server/internal/api/dto"
	httperrors "github.com/infinitystorm/server/internal/pkg/errors"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/validator"
)

// FairnessHandler exposes the provably-fair hash chain for independent
// client-side verification. Every check here is re-derivation, not a
// database lookup: a player supplies the seeds and hashes they recorded
// and gets back whether the server's own chain math agrees.
type FairnessHandler struct {
	logger *logger.Logger
}

// NewFairnessHandler constructs a FairnessHandler.
func NewFairnessHandler(log *logger.Logger) *FairnessHandler {
	return &FairnessHandler{logger: log}
}

// VerifySpinHash re-derives a single spin's hash-chain link.
// POST /fairness/verify-spin
func (h *FairnessHandler) VerifySpinHash(c *fiber.Ctx) error {
	var req dto.VerifySpinHashRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, httperrors.BadRequest("invalid request body"))
	}

	result := validator.ValidateSpinHash(req.ServerSeed, req.ClientSeed, req.PrevSpinHash, req.SpinHash, req.Nonce)
	return c.JSON(dto.VerifySpinHashResponse{Valid: result.Valid, Mismatches: result.Mismatches})
}

// VerifyChain replays an entire revealed session's hash chain from its
// committed server seed hash.
// POST /fairness/verify-chain
func (h *FairnessHandler) VerifyChain(c *fiber.Ctx) error {
	var req dto.VerifyChainRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, httperrors.BadRequest("invalid request body"))
	}

	spins := make([]rng.SpinVerification, len(req.Spins))
	for i, s := range req.Spins {
		spins[i] = rng.SpinVerification{
			ClientSeed:   s.ClientSeed,
			Nonce:        s.Nonce,
			PrevSpinHash: s.PrevSpinHash,
			SpinHash:     s.SpinHash,
		}
	}

	chain := rng.NewHashChain()
	valid, err := chain.VerifyChain(req.ServerSeed, req.ServerSeedHash, spins)
	resp := dto.VerifyChainResponse{Valid: valid}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(resp)
}
