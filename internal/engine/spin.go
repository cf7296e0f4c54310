package engine

import (
	"fmt"

	"github.com/infinitystorm/server/internal/freespins"
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/multiplier"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/symbols"
)

// Outcome is the complete, capped result of a single spin: its initial
// grid, every cascade step, the triggered/retriggered free-spin result, and
// the final win amount after the regulatory cap is applied.
type Outcome struct {
	Computation     *SpinComputation
	Trigger         freespins.TriggerResult
	Retrigger       *freespins.RetriggerResult
	RawWin          money.Amount
	FinalWin        money.Amount
	Capped          bool
}

// GridEngine is the server-authoritative spin engine: it owns the paytable,
// multiplier injection configuration, and gold-variant toggle, and produces
// one Outcome per spin given an RNG and a bet.
type GridEngine struct {
	Paytable    symbols.Paytable
	Multiplier  multiplier.Config
	GoldEnabled bool
	// WildEnabled gates the optional Wild symbol variant; off by default, the
	// same way GoldEnabled is.
	WildEnabled bool
}

// NewGridEngine builds a GridEngine with production defaults.
func NewGridEngine() *GridEngine {
	return &GridEngine{
		Paytable:   symbols.DefaultPaytable,
		Multiplier: multiplier.DefaultConfig,
	}
}

// SpinBase executes one base-game spin: a fresh grid, the full cascade loop,
// and a free-spin trigger check against the initial grid.
func (e *GridEngine) SpinBase(r rng.RNG, bet money.Amount) (*Outcome, error) {
	initial, err := GenerateGrid(r, false, e.GoldEnabled, e.WildEnabled)
	if err != nil {
		return nil, fmt.Errorf("engine: spin base: %w", err)
	}
	trigger := freespins.CheckTrigger(initial)

	comp, err := RunCascades(initial, r, Config{
		Bet:         bet,
		Paytable:    e.Paytable,
		Multiplier:  e.Multiplier,
		GoldEnabled: e.GoldEnabled,
		WildEnabled: e.WildEnabled,
		IsFreeSpin:  false,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: spin base: %w", err)
	}

	capped := ApplyMaxWinCap(comp.TotalWin, bet)
	return &Outcome{
		Computation: comp,
		Trigger:     trigger,
		RawWin:      comp.TotalWin,
		FinalWin:    capped,
		Capped:      IsWinCapped(comp.TotalWin, bet),
	}, nil
}

// SpinFreeSpin executes one spin within an active free-spin session: the
// bet is the session's locked bet, carriedMultiplier is the accumulator
// carried in from prior free spins, and a retrigger check runs against this
// spin's initial grid.
func (e *GridEngine) SpinFreeSpin(r rng.RNG, bet money.Amount, remainingSpins, carriedMultiplier int) (*Outcome, error) {
	initial, err := GenerateGrid(r, true, e.GoldEnabled, e.WildEnabled)
	if err != nil {
		return nil, fmt.Errorf("engine: spin free: %w", err)
	}
	retrigger := freespins.CheckRetrigger(initial, remainingSpins)

	comp, err := RunCascades(initial, r, Config{
		Bet:               bet,
		Paytable:          e.Paytable,
		Multiplier:        e.Multiplier,
		GoldEnabled:       e.GoldEnabled,
		WildEnabled:       e.WildEnabled,
		IsFreeSpin:        true,
		CarriedMultiplier: carriedMultiplier,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: spin free: %w", err)
	}

	capped := ApplyMaxWinCap(comp.TotalWin, bet)
	return &Outcome{
		Computation: comp,
		Retrigger:   &retrigger,
		RawWin:      comp.TotalWin,
		FinalWin:    capped,
		Capped:      IsWinCapped(comp.TotalWin, bet),
	}, nil
}

// Replay reruns the cascade loop deterministically against the recorded
// initial grid and spin hash, for dispute resolution / audit verification.
// The caller supplies a SeededRNG built from the disputed spin's hash.
func (e *GridEngine) Replay(initial grid.Grid, r rng.RNG, bet money.Amount, isFreeSpin bool, carriedMultiplier int) (*SpinComputation, error) {
	return RunCascades(initial, r, Config{
		Bet:               bet,
		Paytable:          e.Paytable,
		Multiplier:        e.Multiplier,
		GoldEnabled:       e.GoldEnabled,
		WildEnabled:       e.WildEnabled,
		IsFreeSpin:        isFreeSpin,
		CarriedMultiplier: carriedMultiplier,
	})
}
