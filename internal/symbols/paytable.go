package symbols

// Paytable maps a paying symbol to its payout multiplier (expressed as
// tenths of a multiplier — e.g. 25 means 2.5x) keyed by cluster size bucket.
// A cluster pays at the greatest bucket key less than or equal to its actual
// size (e.g. an 11-cell cluster pays the 10-cell rate). Multipliers are kept
// as integers, never float64, so the engine can fold them into a win amount
// with exact integer/rational arithmetic instead of floating point.
type Paytable map[Symbol]map[int]int64

// ClusterSizeBuckets are the pay-table breakpoints, smallest first.
var ClusterSizeBuckets = []int{8, 10, 12}

// ScatterCountBuckets are the free-spin-award breakpoints.
var ScatterCountBuckets = []int{4, 5, 6}

// DefaultPaytable is the production pay table. Values are tenths of a
// multiplier of (bet / 20), matching the per-line base-bet convention
// carried through the engine.
var DefaultPaytable = Paytable{
	Thanos:       {8: 25, 10: 100, 12: 500},
	ScarletWitch: {8: 20, 10: 80, 12: 400},
	ThanosWeapon: {8: 15, 10: 60, 12: 300},
	TimeGem:      {8: 10, 10: 40, 12: 150},
	SpaceGem:     {8: 10, 10: 40, 12: 150},
	MindGem:      {8: 8, 10: 30, 12: 120},
	PowerGem:     {8: 8, 10: 30, 12: 120},
	RealityGem:   {8: 5, 10: 20, 12: 80},
	SoulGem:      {8: 5, 10: 20, 12: 80},
}

// PayoutMultiplierTenths returns the pay table multiplier (in tenths) for a
// cluster of the given symbol and size, and whether any bucket was matched.
func (p Paytable) PayoutMultiplierTenths(sym Symbol, size int) (int64, bool) {
	tiers, ok := p[sym]
	if !ok {
		return 0, false
	}
	best := -1
	var mult int64
	for _, bucket := range ClusterSizeBuckets {
		if size >= bucket {
			if v, ok := tiers[bucket]; ok && bucket > best {
				best = bucket
				mult = v
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return mult, true
}

// FreeSpinsAwarded returns the number of free spins a given scatter count
// awards, and whether the count triggers at all (minimum bucket 4).
func FreeSpinsAwarded(scatterCount int) (int, bool) {
	if scatterCount < ScatterCountBuckets[0] {
		return 0, false
	}
	base := 10
	extra := scatterCount - ScatterCountBuckets[0]
	return base + 2*extra, true
}

// RetriggerSpinsAwarded returns the number of additional free spins a
// scatter hit during an active free-spin session awards.
func RetriggerSpinsAwarded(scatterCount int) (int, bool) {
	if scatterCount < ScatterCountBuckets[0] {
		return 0, false
	}
	base := 5
	extra := scatterCount - ScatterCountBuckets[0]
	return base + extra, true
}
