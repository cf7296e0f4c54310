// Package engine is the server-authoritative game engine: it generates the
// initial grid for a spin and drives the full cascade loop (match, remove,
// drop, refill, repeat) to a deterministic, bit-reproducible result given an
// RNG source. The cascade loop itself is carried over from the base game's
// ExecuteCascades in shape (evaluate → remove → drop → fill → repeat until
// no win); the per-step win rule is replaced with cluster flood-fill.
package engine

import (
	"fmt"

	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/symbols"
)

// weightedRefiller draws single cells from a weight table using the given
// RNG, implementing grid.Refiller.
type weightedRefiller struct {
	table symbols.WeightTable
	rng   rng.RNG
	gold  bool
}

func (w weightedRefiller) Draw() (symbols.Symbol, bool, error) {
	idx, err := w.rng.WeightedChoice(w.table.Weights)
	if err != nil {
		return "", false, fmt.Errorf("engine: draw symbol: %w", err)
	}
	sym := w.table.Symbols[idx]
	isGold := false
	if w.gold && symbols.IsPayingSymbol(sym) {
		roll, err := w.rng.Float64()
		if err != nil {
			return "", false, err
		}
		isGold = roll < 0.02
	}
	return sym, isGold, nil
}

// GenerateGrid produces a brand-new, fully populated grid by drawing every
// cell independently from the weight table matching the play mode.
// wildEnabled is off by default (see symbols.BaseGameWeights).
func GenerateGrid(r rng.RNG, isFreeSpin bool, goldEnabled bool, wildEnabled bool) (grid.Grid, error) {
	table := symbols.BaseGameWeights(wildEnabled)
	if isFreeSpin {
		table = symbols.FreeSpinWeights(wildEnabled)
	}
	g := grid.New()
	refiller := weightedRefiller{table: table, rng: r, gold: goldEnabled}
	if err := g.Refill(refiller); err != nil {
		return nil, fmt.Errorf("engine: generate grid: %w", err)
	}
	return g, nil
}
