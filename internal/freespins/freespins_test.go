package freespins

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/symbols"
)

func gridWithScatters(count int) grid.Grid {
	g := grid.New()
	placed := 0
	for c := 0; c < grid.Cols && placed < count; c++ {
		for r := 0; r < grid.Rows && placed < count; r++ {
			g[c][r] = grid.Cell{Symbol: symbols.Scatter}
			placed++
		}
	}
	return g
}

func TestCheckTrigger_RequiresMinimumScatterCount(t *testing.T) {
	res := CheckTrigger(gridWithScatters(3))
	assert.False(t, res.Triggered)
	assert.Equal(t, 3, res.ScatterCount)
}

func TestCheckTrigger_AwardsBaseSpinsAtMinimumBucket(t *testing.T) {
	res := CheckTrigger(gridWithScatters(4))
	require.True(t, res.Triggered)
	assert.Equal(t, 10, res.SpinsAwarded)
}

func TestCheckTrigger_AwardsMoreSpinsForExtraScatters(t *testing.T) {
	res := CheckTrigger(gridWithScatters(6))
	require.True(t, res.Triggered)
	assert.Equal(t, 14, res.SpinsAwarded)
}

func TestCheckRetrigger_AddsToRemaining(t *testing.T) {
	res := CheckRetrigger(gridWithScatters(4), 3)
	require.True(t, res.Retriggered)
	assert.Equal(t, 5, res.AdditionalSpins)
	assert.Equal(t, 8, res.NewTotalRemaining)
}

func TestCheckRetrigger_NoScattersLeavesRemainingUnchanged(t *testing.T) {
	res := CheckRetrigger(grid.New(), 3)
	assert.False(t, res.Retriggered)
	assert.Equal(t, 3, res.NewTotalRemaining)
}

func TestScatterPositions_FindsEveryScatterCell(t *testing.T) {
	g := gridWithScatters(4)
	positions := ScatterPositions(g)
	assert.Len(t, positions, 4)
}

func TestSession_ExecuteSpinDeactivatesAtZeroRemaining(t *testing.T) {
	s := NewSession(uuid.New(), 4, money.FromFloat(1))
	require.Equal(t, 10, s.RemainingSpins)
	require.True(t, s.IsActive)

	for i := 0; i < 9; i++ {
		s.ExecuteSpin(money.Zero)
		assert.True(t, s.IsActive)
	}
	s.ExecuteSpin(money.FromFloat(5))
	assert.False(t, s.IsActive)
	assert.True(t, s.IsComplete())
	assert.Equal(t, money.FromFloat(5), s.TotalWon)
}

func TestSession_AddRetriggerSpinsExtendsRound(t *testing.T) {
	s := NewSession(uuid.New(), 4, money.FromFloat(1))
	s.ExecuteSpin(money.Zero)
	s.AddRetriggerSpins(5)

	assert.Equal(t, 15, s.TotalSpinsAwarded)
	assert.Equal(t, 14, s.RemainingSpins)
	assert.False(t, s.IsComplete())
}

func TestSession_Progress(t *testing.T) {
	s := NewSession(uuid.New(), 4, money.FromFloat(1))
	assert.Equal(t, float64(0), s.Progress())
	s.ExecuteSpin(money.Zero)
	assert.InDelta(t, 10.0, s.Progress(), 0.001)
}
