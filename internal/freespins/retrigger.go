package freespins

import (
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/symbols"
)

// RetriggerResult is the outcome of checking a grid, generated during an
// active free-spin session, for additional awarded spins.
type RetriggerResult struct {
	Retriggered       bool `json:"retriggered"`
	ScatterCount      int  `json:"scatter_count"`
	AdditionalSpins   int  `json:"additional_spins"`
	NewTotalRemaining int  `json:"new_total_remaining"`
}

// CheckRetrigger inspects the initial grid of a free-spin round for a
// retrigger, adding any additional spins awarded to currentRemaining.
func CheckRetrigger(g grid.Grid, currentRemaining int) RetriggerResult {
	count := g.CountSymbol(symbols.Scatter)
	additional, ok := symbols.RetriggerSpinsAwarded(count)
	if !ok {
		return RetriggerResult{ScatterCount: count, NewTotalRemaining: currentRemaining}
	}
	return RetriggerResult{
		Retriggered:       true,
		ScatterCount:      count,
		AdditionalSpins:   additional,
		NewTotalRemaining: currentRemaining + additional,
	}
}
