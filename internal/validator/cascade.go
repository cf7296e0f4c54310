// Package validator re-derives a cascade step from the grid a client
// reports and checks it against the step the server already computed,
// catching both accidental client desync and a tampered client trying to
// claim a win the server engine never produced.
package validator

import (
	"fmt"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
)

// Mismatch describes one way a reported cascade step diverged from the
// authoritative one.
type Mismatch struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Result is the outcome of validating a single cascade step.
type Result struct {
	Valid     bool       `json:"valid"`
	StepIndex int        `json:"stepIndex"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

func (r *Result) fail(field, expected, actual string) {
	r.Valid = false
	r.Mismatches = append(r.Mismatches, Mismatch{Field: field, Expected: expected, Actual: actual})
}

// ValidateStep compares a client-reported grid and win amount for cascade
// step index against the authoritative step the engine computed. It never
// re-runs the RNG: the authoritative step is exactly what RunCascades
// already produced, so this is a pure structural comparison.
func ValidateStep(authoritative engine.CascadeStep, reportedGrid grid.Grid, reportedWin money.Amount) Result {
	res := Result{Valid: true, StepIndex: authoritative.Index}

	if !reportedGrid.IsComplete() {
		res.fail("grid.complete", "true", "false")
	}

	if len(reportedGrid) != len(authoritative.GridAfter) {
		res.fail("grid.cols", fmt.Sprintf("%d", len(authoritative.GridAfter)), fmt.Sprintf("%d", len(reportedGrid)))
		return res
	}

	for c := range authoritative.GridAfter {
		if len(reportedGrid[c]) != len(authoritative.GridAfter[c]) {
			res.fail("grid.rows", fmt.Sprintf("col %d: %d", c, len(authoritative.GridAfter[c])), fmt.Sprintf("col %d: %d", c, len(reportedGrid[c])))
			continue
		}
		for row := range authoritative.GridAfter[c] {
			want := authoritative.GridAfter[c][row]
			got := reportedGrid[c][row]
			if want.Symbol != got.Symbol || want.Gold != got.Gold {
				res.fail(
					fmt.Sprintf("grid[%d][%d]", c, row),
					fmt.Sprintf("%s gold=%v", want.Symbol, want.Gold),
					fmt.Sprintf("%s gold=%v", got.Symbol, got.Gold),
				)
			}
		}
	}

	if reportedWin != authoritative.StepWin {
		res.fail("step_win", authoritative.StepWin.String(), reportedWin.String())
	}

	return res
}

// ValidateCascade validates an entire reported cascade sequence against the
// authoritative computation, stopping at the first step count mismatch
// since later steps are meaningless once the sequence lengths disagree.
func ValidateCascade(authoritative []engine.CascadeStep, reportedGrids []grid.Grid, reportedWins []money.Amount) ([]Result, error) {
	if len(reportedGrids) != len(reportedWins) {
		return nil, fmt.Errorf("validator: grid count (%d) and win count (%d) disagree", len(reportedGrids), len(reportedWins))
	}
	if len(reportedGrids) != len(authoritative) {
		return nil, fmt.Errorf("validator: reported %d cascade steps, expected %d", len(reportedGrids), len(authoritative))
	}

	results := make([]Result, len(authoritative))
	for i, step := range authoritative {
		results[i] = ValidateStep(step, reportedGrids[i], reportedWins[i])
	}
	return results, nil
}

// AllValid reports whether every step in a validation pass succeeded.
func AllValid(results []Result) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}
