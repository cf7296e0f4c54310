package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/rng"
)

func TestSpinBase_Deterministic(t *testing.T) {
	bet := money.FromFloat(1.00)
	eng := NewGridEngine()

	r1 := rng.NewSeededRNG("fixed-seed-for-replay-test")
	out1, err := eng.SpinBase(r1, bet)
	require.NoError(t, err)

	r2 := rng.NewSeededRNG("fixed-seed-for-replay-test")
	out2, err := eng.SpinBase(r2, bet)
	require.NoError(t, err)

	assert.Equal(t, out1.Computation.InitialGrid, out2.Computation.InitialGrid)
	assert.Equal(t, out1.FinalWin, out2.FinalWin)
	assert.Equal(t, len(out1.Computation.Steps), len(out2.Computation.Steps))
}

func TestSpinBase_GridAlwaysComplete(t *testing.T) {
	eng := NewGridEngine()
	r := rng.NewCryptoRNG()
	bet := money.FromFloat(2.00)

	out, err := eng.SpinBase(r, bet)
	require.NoError(t, err)
	assert.True(t, out.Computation.InitialGrid.IsComplete())
	assert.True(t, out.Computation.FinalGrid.IsComplete())
}

func TestSpinBase_WinNeverExceedsCap(t *testing.T) {
	eng := NewGridEngine()
	bet := money.FromFloat(5.00)

	for i := 0; i < 25; i++ {
		r := rng.NewCryptoRNG()
		out, err := eng.SpinBase(r, bet)
		require.NoError(t, err)
		assert.False(t, out.FinalWin.GreaterThan(bet.MulInt(MaxWinMultiplier)))
	}
}

func TestReplay_ReproducesOriginalComputation(t *testing.T) {
	eng := NewGridEngine()
	bet := money.FromFloat(1.00)

	seed := "dispute-replay-seed"
	r1 := rng.NewSeededRNG(seed)
	original, err := eng.SpinBase(r1, bet)
	require.NoError(t, err)

	r2 := rng.NewSeededRNG(seed)
	initial, err := GenerateGrid(r2, false, false, false)
	require.NoError(t, err)
	require.Equal(t, original.Computation.InitialGrid, initial)

	replay, err := eng.Replay(initial, r2, bet, false, 0)
	require.NoError(t, err)
	assert.Equal(t, original.Computation.TotalWin, replay.TotalWin)
}
