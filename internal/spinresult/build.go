package spinresult

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
)

// Provenance carries the hash-chain fields a SpinResult must record so the
// spin can later be replayed and verified.
type Provenance struct {
	ServerSeedHash string
	ClientSeed     string
	Nonce          int64
	PrevSpinHash   string
	SpinHash       string
}

// Build assembles an immutable SpinResult from an engine outcome, its
// wallet effect, and its RNG provenance.
func Build(
	sessionID, playerID uuid.UUID,
	bet, balanceBefore, balanceAfter money.Amount,
	out *engine.Outcome,
	freeSpinsSessionID *uuid.UUID,
	prov Provenance,
) SpinResult {
	scatterCount := 0
	triggered := false
	awarded := 0
	if out.Trigger.Triggered || out.Trigger.ScatterCount > 0 {
		scatterCount = out.Trigger.ScatterCount
		triggered = out.Trigger.Triggered
		awarded = out.Trigger.SpinsAwarded
	}
	if out.Retrigger != nil {
		scatterCount = out.Retrigger.ScatterCount
		triggered = out.Retrigger.Retriggered
		awarded = out.Retrigger.AdditionalSpins
	}

	return SpinResult{
		ID:                 uuid.New(),
		SessionID:          sessionID,
		PlayerID:           playerID,
		Bet:                bet,
		BalanceBefore:      balanceBefore,
		BalanceAfter:       balanceAfter,
		InitialGrid:        JSONGrid(out.Computation.InitialGrid),
		FinalGrid:          JSONGrid(out.Computation.FinalGrid),
		Cascades:           CascadeSteps(out.Computation.Steps),
		BaseWin:            out.Computation.BaseWin,
		TotalMultiplier:    out.Computation.TotalMultiplier,
		TotalWin:           out.FinalWin,
		WinCapped:          out.Capped,
		IsFreeSpin:         freeSpinsSessionID != nil,
		FreeSpinsSessionID: freeSpinsSessionID,
		FreeSpinsTriggered: triggered,
		FreeSpinsAwarded:   awarded,
		ScatterCount:       scatterCount,
		ServerSeedHash:     prov.ServerSeedHash,
		ClientSeed:         prov.ClientSeed,
		Nonce:              prov.Nonce,
		PrevSpinHash:       prov.PrevSpinHash,
		SpinHash:           prov.SpinHash,
	}
}

// contentDigestInput is the subset of a SpinResult that determines its
// content digest: everything a client needs to independently recompute to
// confirm the server didn't alter the outcome after the fact.
type contentDigestInput struct {
	InitialGrid grid.Grid           `json:"initialGrid"`
	FinalGrid   grid.Grid           `json:"finalGrid"`
	Cascades    []engine.CascadeStep `json:"cascades"`
	TotalWin    string              `json:"totalWin"`
	SpinHash    string              `json:"spinHash"`
}

// ContentDigest returns a SHA256 digest over the result's observable
// outcome, used by the cascade validator and the sync transport to detect
// divergence between what the server computed and what a client renders.
func (s SpinResult) ContentDigest() (string, error) {
	input := contentDigestInput{
		InitialGrid: grid.Grid(s.InitialGrid),
		FinalGrid:   grid.Grid(s.FinalGrid),
		Cascades:    []engine.CascadeStep(s.Cascades),
		TotalWin:    s.TotalWin.String(),
		SpinHash:    s.SpinHash,
	}
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("spinresult: marshal digest input: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
