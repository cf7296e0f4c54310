// Package freespins detects scatter triggers and retriggers against the
// initial grid of a spin, and models free-spin session progress.
package freespins

import (
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/symbols"
)

// TriggerResult is the outcome of checking a grid for a free-spin trigger.
type TriggerResult struct {
	Triggered    bool `json:"triggered"`
	ScatterCount int  `json:"scatter_count"`
	SpinsAwarded int  `json:"spins_awarded"`
}

// CheckTrigger checks the initial grid of a base-game spin for a scatter
// trigger. Per the pinned scatter-counting rule, only the initial grid is
// examined — scatters that appear solely as cascade drop-ins never trigger
// free spins.
func CheckTrigger(g grid.Grid) TriggerResult {
	count := g.CountSymbol(symbols.Scatter)
	awarded, ok := symbols.FreeSpinsAwarded(count)
	return TriggerResult{Triggered: ok, ScatterCount: count, SpinsAwarded: awarded}
}

// ScatterPositions returns every cell holding the scatter symbol.
func ScatterPositions(g grid.Grid) []grid.Position {
	var positions []grid.Position
	for col := range g {
		for row := range g[col] {
			if g[col][row].Symbol == symbols.Scatter {
				positions = append(positions, grid.Position{Col: col, Row: row})
			}
		}
	}
	return positions
}
