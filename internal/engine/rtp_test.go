package engine

import (
	"testing"

	"github.com/infinitystorm/server/internal/freespins"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/rng"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRTP_LargeSampleStaysWithinGrossRegressionBand runs a large batch of
// base-game spins (plus any triggered free-spin rounds) and checks the
// observed RTP and free-spin trigger rate against a wide sanity band. The
// band is intentionally loose — it catches a broken payout/multiplier
// computation (RTP near zero, or absurdly inflated), not the precise
// production calibration against the configured target RTP, which is
// cmd/rtp-simulator's job against the production weight tables.
func TestRTP_LargeSampleStaysWithinGrossRegressionBand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large-sample RTP simulation in short mode")
	}

	const n = 100000
	bet := money.FromFloat(1.00)
	e := NewGridEngine()
	r := rng.NewCryptoRNG()

	wagered := money.Zero
	won := money.Zero
	var triggers int

	for i := 0; i < n; i++ {
		out, err := e.SpinBase(r, bet)
		require.NoError(t, err)

		wagered = wagered.Add(bet)
		won = won.Add(out.FinalWin)

		if out.Trigger.Triggered {
			triggers++
			won = won.Add(simulateFreeSpinsForTest(e, r, out.Trigger, bet))
		}
	}

	require.True(t, wagered.IsPositive())
	rtp := won.Float64() / wagered.Float64()
	assert.Greater(t, rtp, 0.20, "RTP collapsed far below any plausible configuration, suggesting a broken payout computation")
	assert.Less(t, rtp, 3.0, "RTP ballooned far above any plausible configuration, suggesting an unbounded or duplicated win computation")

	triggerRate := float64(triggers) / float64(n)
	assert.GreaterOrEqual(t, triggerRate, 0.0)
	assert.Less(t, triggerRate, 0.20, "free-spin trigger rate is implausibly high, suggesting a broken scatter count or trigger threshold")
}

// simulateFreeSpinsForTest plays a triggered free-spin round to completion,
// mirroring cmd/rtp-simulator's own loop so this package's sanity test
// doesn't depend on importing a main package.
func simulateFreeSpinsForTest(e *GridEngine, r rng.RNG, trigger freespins.TriggerResult, bet money.Amount) money.Amount {
	fs := freespins.NewSession(uuid.Nil, trigger.ScatterCount, bet)
	for !fs.IsComplete() {
		out, err := e.SpinFreeSpin(r, fs.LockedBetAmount, fs.RemainingSpins, fs.Accumulator.Carried)
		if err != nil {
			panic(err)
		}
		fs.ExecuteSpin(out.FinalWin)
		if out.Retrigger != nil && out.Retrigger.Retriggered {
			fs.AddRetriggerSpins(out.Retrigger.AdditionalSpins)
		}
		fs.Accumulator.Commit(out.Computation.InjectedMultSum)
	}
	return fs.TotalWon
}
