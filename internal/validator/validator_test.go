package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/symbols"
)

func sampleGrid() grid.Grid {
	g := grid.New()
	for c := 0; c < grid.Cols; c++ {
		for r := 0; r < grid.Rows; r++ {
			g[c][r] = grid.Cell{Symbol: symbols.TimeGem}
		}
	}
	return g
}

func TestValidateStep_MatchesAuthoritative(t *testing.T) {
	g := sampleGrid()
	step := engine.CascadeStep{Index: 0, GridAfter: g, StepWin: money.FromFloat(1.5)}

	res := ValidateStep(step, g.Clone(), money.FromFloat(1.5))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Mismatches)
}

func TestValidateStep_FlagsSymbolMismatch(t *testing.T) {
	authoritative := sampleGrid()
	reported := authoritative.Clone()
	reported[0][0].Symbol = symbols.SpaceGem

	step := engine.CascadeStep{Index: 0, GridAfter: authoritative, StepWin: money.FromFloat(1.5)}
	res := ValidateStep(step, reported, money.FromFloat(1.5))

	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Mismatches)
	assert.Equal(t, "grid[0][0]", res.Mismatches[0].Field)
}

func TestValidateStep_FlagsWinMismatch(t *testing.T) {
	g := sampleGrid()
	step := engine.CascadeStep{Index: 0, GridAfter: g, StepWin: money.FromFloat(1.5)}

	res := ValidateStep(step, g.Clone(), money.FromFloat(2.0))
	assert.False(t, res.Valid)
	assert.Equal(t, "step_win", res.Mismatches[0].Field)
}

func TestValidateCascade_RejectsLengthMismatch(t *testing.T) {
	g := sampleGrid()
	steps := []engine.CascadeStep{{Index: 0, GridAfter: g, StepWin: money.Zero}}

	_, err := ValidateCascade(steps, []grid.Grid{g, g}, []money.Amount{money.Zero, money.Zero})
	assert.Error(t, err)
}

func TestAllValid(t *testing.T) {
	assert.True(t, AllValid([]Result{{Valid: true}, {Valid: true}}))
	assert.False(t, AllValid([]Result{{Valid: true}, {Valid: false}}))
}

func TestValidateSpinHash_AgreesWithHashChain(t *testing.T) {
	chain := rng.NewHashChain()
	spinHash := chain.GenerateSpinHash("prev", "server-seed", "client-seed", 1)

	res := ValidateSpinHash("server-seed", "client-seed", "prev", spinHash, 1)
	assert.True(t, res.Valid)
}

func TestValidateSpinHash_FlagsTamperedHash(t *testing.T) {
	res := ValidateSpinHash("server-seed", "client-seed", "prev", "not-the-hash", 1)
	assert.False(t, res.Valid)
}

func TestValidateTiming_RejectsTooFast(t *testing.T) {
	sent := time.Now()
	res := ValidateTiming(sent, sent.Add(50*time.Millisecond))
	assert.False(t, res.Valid)
}

func TestValidateTiming_AcceptsWithinWindow(t *testing.T) {
	sent := time.Now()
	res := ValidateTiming(sent, sent.Add(1*time.Second))
	assert.True(t, res.Valid)
}

func TestValidateTiming_RejectsTooSlow(t *testing.T) {
	sent := time.Now()
	res := ValidateTiming(sent, sent.Add(time.Minute))
	assert.False(t, res.Valid)
}
