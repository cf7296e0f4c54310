// Command rtp-simulator runs a large batch of simulated base-game spins
// through the cascade engine and reports the observed RTP and free-spin
// trigger rate, to be checked against the configured target RTP.
package main

import (
	"flag"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/freespins"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/rng"
)

// stats accumulates results across every worker. Each worker owns a disjoint
// slice of spins, so the only shared state is the final merge under mu.
type stats struct {
	mu sync.Mutex

	spins             int64
	wagered           money.Amount
	won               money.Amount
	freeSpinsTriggers int64
	winCapped         int64
	maxWin            money.Amount
}

func (s *stats) merge(o stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spins += o.spins
	s.wagered = s.wagered.Add(o.wagered)
	s.won = s.won.Add(o.won)
	s.freeSpinsTriggers += o.freeSpinsTriggers
	s.winCapped += o.winCapped
	if o.maxWin.GreaterThan(s.maxWin) {
		s.maxWin = o.maxWin
	}
}

func runBatch(e *engine.GridEngine, bet money.Amount, n int) stats {
	r := rng.NewCryptoRNG()
	var local stats
	for i := 0; i < n; i++ {
		out, err := e.SpinBase(r, bet)
		if err != nil {
			// A configuration bug in the paytable/weight tables would surface
			// here as a cascade loop exceeding its depth guard; abort the
			// batch rather than silently skip spins.
			panic(fmt.Sprintf("rtp-simulator: spin failed: %v", err))
		}
		local.spins++
		local.wagered = local.wagered.Add(bet)
		local.won = local.won.Add(out.FinalWin)
		if out.Capped {
			local.winCapped++
		}
		if out.FinalWin.GreaterThan(local.maxWin) {
			local.maxWin = out.FinalWin
		}
		if out.Trigger.Triggered {
			local.freeSpinsTriggers++
			local.won = local.won.Add(simulateFreeSpins(e, out.Trigger, bet))
		}
	}
	return local
}

// simulateFreeSpins plays out a triggered free-spin round to completion
// using a fresh crypto RNG, returning the round's total win.
func simulateFreeSpins(e *engine.GridEngine, trigger freespins.TriggerResult, bet money.Amount) money.Amount {
	r := rng.NewCryptoRNG()
	fs := freespins.NewSession(uuid.Nil, trigger.ScatterCount, bet)
	for !fs.IsComplete() {
		out, err := e.SpinFreeSpin(r, fs.LockedBetAmount, fs.RemainingSpins, fs.Accumulator.Carried)
		if err != nil {
			panic(fmt.Sprintf("rtp-simulator: free spin failed: %v", err))
		}
		fs.ExecuteSpin(out.FinalWin)
		if out.Retrigger != nil && out.Retrigger.Retriggered {
			fs.AddRetriggerSpins(out.Retrigger.AdditionalSpins)
		}
		fs.Accumulator.Commit(out.Computation.InjectedMultSum)
	}
	return fs.TotalWon
}

func main() {
	totalSpins := flag.Int("spins", 1_000_000, "total number of base-game spins to simulate")
	workers := flag.Int("workers", 8, "number of concurrent spin workers")
	betFlag := flag.Float64("bet", 1.00, "bet amount per spin")
	flag.Parse()

	bet := money.FromFloat(*betFlag)
	e := engine.NewGridEngine()

	perWorker := *totalSpins / *workers
	remainder := *totalSpins % *workers

	var g errgroup.Group
	var total stats
	for w := 0; w < *workers; w++ {
		n := perWorker
		if w == 0 {
			n += remainder
		}
		g.Go(func() error {
			total.merge(runBatch(e, bet, n))
			return nil
		})
	}
	_ = g.Wait()

	rtp := 0.0
	if total.wagered.IsPositive() {
		rtp = total.won.Float64() / total.wagered.Float64() * 100
	}
	triggerRate := 0.0
	if total.spins > 0 {
		triggerRate = float64(total.freeSpinsTriggers) / float64(total.spins) * 100
	}

	fmt.Printf("spins:               %d\n", total.spins)
	fmt.Printf("total wagered:       %s\n", total.wagered.String())
	fmt.Printf("total won:           %s\n", total.won.String())
	fmt.Printf("RTP:                 %.3f%%\n", rtp)
	fmt.Printf("free spin triggers:  %d (%.4f%%)\n", total.freeSpinsTriggers, triggerRate)
	fmt.Printf("win-capped spins:    %d\n", total.winCapped)
	fmt.Printf("max single win:      %s\n", total.maxWin.String())
}
