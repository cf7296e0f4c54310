// Package multiplier implements the random multiplier injection table and
// tracks the multiplier accumulated across an active free-spin session. It
// has no notion of a multiplier tied to cascade position — a spin's
// multiplier is whatever random values fired during its cascades plus
// whatever the free-spin session has carried in, totalized once per spin.
package multiplier

import "github.com/infinitystorm/server/internal/rng"

// Table lists the possible random multiplier values a cascade step can
// inject, with their relative spawn weights (rarer as the value grows). This
// is the single canonical source other packages and the RTP test suite
// consult — there is no second copy of these numbers anywhere.
var Table = []struct {
	Value  int
	Weight int
}{
	{2, 2000},
	{3, 1200},
	{4, 700},
	{5, 400},
	{6, 220},
	{8, 120},
	{10, 60},
	{20, 18},
	{100, 3},
	{500, 1},
}

// Config controls how often a cascade step injects a random multiplier.
type Config struct {
	// PerCascadeChance is the probability, in [0,1], that a given cascade
	// step injects a random multiplier.
	PerCascadeChance float64
}

// DefaultConfig is the production injection rate.
var DefaultConfig = Config{PerCascadeChance: 0.12}

// MaybeInjectRandom rolls, per cfg.PerCascadeChance, whether this cascade
// step also injects a random multiplier from Table, using r for both the
// coin flip and the weighted pick. Returns 0 if nothing was injected.
func MaybeInjectRandom(r rng.RNG, cfg Config) (int, error) {
	roll, err := r.Float64()
	if err != nil {
		return 0, err
	}
	if roll >= cfg.PerCascadeChance {
		return 0, nil
	}
	weights := make([]int, len(Table))
	for i, e := range Table {
		weights[i] = e.Weight
	}
	idx, err := r.WeightedChoice(weights)
	if err != nil {
		return 0, err
	}
	return Table[idx].Value, nil
}

// Accumulator tracks the multiplier carried across spins within an active
// free-spin session. Per the authoritative server rule, a spin's multiplier
// is totalized once at spin end (engine.SpinComputation.TotalMultiplier),
// never per cascade step; Commit folds that spin's injected-multiplier sum
// into the carried value so it feeds the next free spin's total.
type Accumulator struct {
	// Carried is the multiplier accumulated from prior free spins in the
	// current session; 0 outside of a free-spin session.
	Carried int
}

// Commit folds a spin's injected-multiplier sum into the carried
// accumulator for the next free spin in the session.
func (a *Accumulator) Commit(injectedMultSum int) {
	a.Carried += injectedMultSum
}

// Reset clears the carried multiplier. Ending a free-spin session does not
// call it: gamesession drops the finished session along with its Accumulator.
func (a *Accumulator) Reset() {
	a.Carried = 0
}
