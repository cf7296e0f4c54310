package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/multiplier"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/symbols"
)

// checkerboardGrid alternates two non-matching symbols so no 4-connected
// region ever reaches two cells, let alone MinClusterSize: a structurally
// guaranteed empty cascade.
func checkerboardGrid() grid.Grid {
	g := grid.New()
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			sym := symbols.TimeGem
			if (col+row)%2 == 1 {
				sym = symbols.SpaceGem
			}
			g.Set(col, row, grid.Cell{Symbol: sym})
		}
	}
	return g
}

func TestRunCascades_EmptyCascadeYieldsZeroWinAndUnitMultiplier(t *testing.T) {
	bet := money.FromFloat(1.00)
	cfg := Config{
		Bet:        bet,
		Paytable:   symbols.DefaultPaytable,
		Multiplier: multiplier.Config{PerCascadeChance: 0},
	}

	comp, err := RunCascades(checkerboardGrid(), rng.NewSeededRNG("empty-cascade-seed"), cfg)
	require.NoError(t, err)

	assert.Empty(t, comp.Steps)
	assert.Equal(t, money.Zero, comp.BaseWin)
	assert.Equal(t, 0, comp.InjectedMultSum)
	assert.Equal(t, 1, comp.TotalMultiplier)
	assert.Equal(t, money.Zero, comp.TotalWin)
}

func TestRunCascades_BaseWinIsSumOfStepWins(t *testing.T) {
	bet := money.FromFloat(1.00)
	cfg := Config{
		Bet:        bet,
		Paytable:   symbols.DefaultPaytable,
		Multiplier: multiplier.Config{PerCascadeChance: 0},
	}

	g := grid.New()
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			g.Set(col, row, grid.Cell{Symbol: symbols.ThanosWeapon})
		}
	}

	comp, err := RunCascades(g, rng.NewSeededRNG("base-win-sum-seed"), cfg)
	require.NoError(t, err)

	sum := money.Zero
	for _, step := range comp.Steps {
		sum = sum.Add(step.StepWin)
	}
	assert.Equal(t, sum, comp.BaseWin)
	assert.Equal(t, 0, comp.InjectedMultSum, "PerCascadeChance of 0 must never inject a multiplier")
	assert.Equal(t, 1, comp.TotalMultiplier)
	assert.Equal(t, comp.BaseWin, comp.TotalWin, "with no injected multiplier and no carry-in, TotalWin must equal BaseWin")
}

func TestRunCascades_TotalMultiplierFoldsInjectedSumAndCarriedMultiplier(t *testing.T) {
	bet := money.FromFloat(1.00)
	const carried = 3
	cfg := Config{
		Bet:               bet,
		Paytable:          symbols.DefaultPaytable,
		Multiplier:        multiplier.Config{PerCascadeChance: 0},
		CarriedMultiplier: carried,
	}

	comp, err := RunCascades(checkerboardGrid(), rng.NewSeededRNG("carried-multiplier-seed"), cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, comp.InjectedMultSum)
	assert.Equal(t, 1+carried, comp.TotalMultiplier)
	assert.Equal(t, comp.BaseWin.MulInt(comp.TotalMultiplier), comp.TotalWin)
}
