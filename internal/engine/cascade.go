package engine

import (
	"fmt"

	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/multiplier"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/symbols"
)

// MaxCascades is a hard engine invariant: a spin sequence that somehow
// reaches this many cascade steps without exhausting its wins aborts fatally
// rather than looping — a malformed paytable or weight table producing an
// unbounded cascade chain is a configuration bug, not a valid outcome.
const MaxCascades = 60

// ClusterWin is the payout detail for one matched cluster within a cascade
// step.
type ClusterWin struct {
	Symbol    symbols.Symbol  `json:"symbol"`
	Size      int             `json:"size"`
	Positions []grid.Position `json:"positions"`
	Payout    float64         `json:"payout"`
	WinAmount money.Amount    `json:"win_amount"`
}

// CascadeStep is the full record of one match/remove/drop/refill iteration.
// StepWin is the unscaled sum of this step's cluster payouts — no multiplier
// factor applied. The spin-level multiplier is totalized once at spin end,
// not per step; see SpinComputation.TotalMultiplier.
type CascadeStep struct {
	Index        int          `json:"index"`
	GridAfter    grid.Grid    `json:"grid_after"`
	Clusters     []ClusterWin `json:"clusters"`
	InjectedMult int          `json:"injected_multiplier"`
	StepWin      money.Amount `json:"step_win"`
}

// SpinComputation is the full result of running the cascade loop to
// completion from an initial grid. BaseWin is the unscaled sum of every
// step's cluster payouts; TotalMultiplier is computed once at spin end from
// whatever random multipliers fired during the spin's cascades plus any
// multiplier carried in from a prior free spin; TotalWin = BaseWin *
// TotalMultiplier, pre-cap.
type SpinComputation struct {
	InitialGrid      grid.Grid
	FinalGrid        grid.Grid
	Steps            []CascadeStep
	BaseWin          money.Amount
	InjectedMultSum  int
	TotalMultiplier  int
	TotalWin         money.Amount
}

// Config bundles the tunables the cascade loop needs beyond the RNG itself.
type Config struct {
	Bet               money.Amount
	Paytable          symbols.Paytable
	Multiplier        multiplier.Config
	GoldEnabled       bool
	WildEnabled       bool
	IsFreeSpin        bool
	CarriedMultiplier int
}

// RunCascades evaluates clusters on initialGrid and repeatedly
// match/remove/drop/refill until a step produces no winning cluster. Each
// step's cluster payouts are summed unscaled into BaseWin; any random
// multiplier injected along the way is tallied and, together with the
// carried-in free-spin multiplier, totalized into a single TotalMultiplier
// applied once after the loop exits — never per step.
func RunCascades(initialGrid grid.Grid, r rng.RNG, cfg Config) (*SpinComputation, error) {
	current := initialGrid.Clone()
	result := &SpinComputation{InitialGrid: initialGrid.Clone()}

	table := symbols.BaseGameWeights(cfg.WildEnabled)
	if cfg.IsFreeSpin {
		table = symbols.FreeSpinWeights(cfg.WildEnabled)
	}
	refiller := weightedRefiller{table: table, rng: r, gold: cfg.GoldEnabled}

	for stepIdx := 1; ; stepIdx++ {
		if stepIdx > MaxCascades {
			return nil, fmt.Errorf("engine: exceeded max cascade depth (%d)", MaxCascades)
		}

		clusters := grid.FindClusters(current)
		if len(clusters) == 0 {
			break
		}

		injected, err := multiplier.MaybeInjectRandom(r, cfg.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("engine: inject multiplier: %w", err)
		}

		step := CascadeStep{Index: stepIdx, InjectedMult: injected}

		stepWin := money.Zero
		for _, cl := range clusters {
			tenths, ok := cfg.Paytable.PayoutMultiplierTenths(cl.Symbol, cl.Size())
			if !ok {
				continue
			}
			// win = (bet / 20) * (tenths / 10) = bet * tenths / 200, unscaled.
			winAmount := cfg.Bet.MulRat(tenths, 200)
			step.Clusters = append(step.Clusters, ClusterWin{
				Symbol:    cl.Symbol,
				Size:      cl.Size(),
				Positions: cl.Positions,
				Payout:    float64(tenths) / 10,
				WinAmount: winAmount,
			})
			stepWin = stepWin.Add(winAmount)
		}
		step.StepWin = stepWin
		result.BaseWin = result.BaseWin.Add(stepWin)
		result.InjectedMultSum += injected

		current.Remove(clusters)
		current.Drop()
		if err := current.Refill(refiller); err != nil {
			return nil, fmt.Errorf("engine: refill after cascade %d: %w", stepIdx, err)
		}
		step.GridAfter = current.Clone()
		result.Steps = append(result.Steps, step)
	}

	result.FinalGrid = current
	result.TotalMultiplier = 1 + result.InjectedMultSum + cfg.CarriedMultiplier
	result.TotalWin = result.BaseWin.MulInt(result.TotalMultiplier)
	return result, nil
}
