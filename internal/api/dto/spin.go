package dto

import (
	"time"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/spinresult"
)

// SpinRequest is the POST /spin payload. Bet is ignored while a free-spin
// round is active (the session's locked bet governs instead).
type SpinRequest struct {
	Bet float64 `json:"bet" validate:"required,gt=0"`
}

// SpinResponse is the full server-authoritative outcome of one spin: the
// engine's cascade trace plus the live session/wallet fields a client
// needs to render the result and open a cascade-sync session for it.
type SpinResponse struct {
	SpinID             string          `json:"spinId"`
	InitialGrid        grid.Grid       `json:"initialGrid"`
	FinalGrid          grid.Grid       `json:"finalGrid"`
	Cascades           []engine.CascadeStep `json:"cascades"`
	Bet                string          `json:"bet"`
	TotalWin           string          `json:"totalWin"`
	WinCapped          bool            `json:"winCapped"`
	Balance            string          `json:"balance"`
	FreeSpinsTriggered bool            `json:"freeSpinsTriggered"`
	ScatterCount       int             `json:"scatterCount"`
	FreeSpinsActive     bool            `json:"freeSpinsActive"`
	FreeSpinsRemaining int             `json:"freeSpinsRemaining"`
	FreeSpinsTotal      int             `json:"freeSpinsTotal"`
	ServerSeedHash     string          `json:"serverSeedHash"`
	SpinHash           string          `json:"spinHash"`
	Nonce              int64           `json:"nonce"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// SpinFromOutcome builds the wire response from a persisted SpinResult and
// the session's live free-spin bookkeeping.
func SpinFromOutcome(r *spinresult.SpinResult, freeSpinsActive bool, freeSpinsRemaining, freeSpinsTotal int) SpinResponse {
	return SpinResponse{
		SpinID:             r.ID.String(),
		InitialGrid:        grid.Grid(r.InitialGrid),
		FinalGrid:          grid.Grid(r.FinalGrid),
		Cascades:           []engine.CascadeStep(r.Cascades),
		Bet:                r.Bet.String(),
		TotalWin:           r.TotalWin.String(),
		WinCapped:          r.WinCapped,
		Balance:            r.BalanceAfter.String(),
		FreeSpinsTriggered: r.FreeSpinsTriggered,
		ScatterCount:       r.ScatterCount,
		FreeSpinsActive:     freeSpinsActive,
		FreeSpinsRemaining: freeSpinsRemaining,
		FreeSpinsTotal:      freeSpinsTotal,
		ServerSeedHash:     r.ServerSeedHash,
		SpinHash:           r.SpinHash,
		Nonce:              r.Nonce,
		CreatedAt:          r.CreatedAt,
	}
}

// SpinHistoryResponse is the GET /history/spins page.
type SpinHistoryResponse struct {
	Spins []SpinResponse `json:"spins"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int64          `json:"total"`
}
