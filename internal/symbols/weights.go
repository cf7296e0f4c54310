package symbols

// WeightTable gives each symbol an integer spawn weight for a single cell
// draw, in the same "percentage rate converted to integer weight" style the
// base game uses for reel-strip construction: rates are per-cell percentages
// (baseGameRates sums to 100 with Wild included, freeSpinRates to 98) and
// are multiplied by weightPrecision so WeightedChoice operates on whole
// numbers; only their relative sizes affect the draw.
type WeightTable struct {
	Symbols []Symbol
	Weights []int
}

// scaleRates converts a symbol->percentage map into parallel weight slices,
// scaling by precision so fractional percentages survive as integers.
// wildEnabled controls whether Wild gets a slot in the table at all; when
// false it is dropped entirely rather than zero-weighted, matching the
// closed base symbol set when the Wild variant is off.
func scaleRates(rates map[Symbol]float64, precision int, wildEnabled bool) WeightTable {
	wt := WeightTable{}
	for _, sym := range AllSymbols() {
		if sym == Wild && !wildEnabled {
			continue
		}
		rate, ok := rates[sym]
		if !ok {
			continue
		}
		wt.Symbols = append(wt.Symbols, sym)
		wt.Weights = append(wt.Weights, int(rate*float64(precision)))
	}
	return wt
}

// baseGameRates gives the per-cell spawn percentage for each symbol in the
// base game. Scatter is intentionally rare; Wild, when enabled, spawns at
// half the rate of the rarest paying symbol (Thanos).
var baseGameRates = map[Symbol]float64{
	Wild:    1.5,
	Scatter: 1.2,

	Thanos:       3.0,
	ScarletWitch: 3.5,
	ThanosWeapon: 4.0,

	TimeGem:    12.0,
	SpaceGem:   12.0,
	MindGem:    15.5,
	PowerGem:   15.5,
	RealityGem: 15.9,
	SoulGem:    15.9,
}

// freeSpinRates shifts weight toward high-value and wild symbols, the way
// the base game's free-spin reel strips are built richer than the base
// strips.
var freeSpinRates = map[Symbol]float64{
	Wild:    2.5,
	Scatter: 1.0,

	Thanos:       4.5,
	ScarletWitch: 5.0,
	ThanosWeapon: 5.5,

	TimeGem:    11.0,
	SpaceGem:   11.0,
	MindGem:    14.375,
	PowerGem:   14.375,
	RealityGem: 14.375,
	SoulGem:    14.375,
}

const weightPrecision = 1000

// BaseGameWeights returns the spawn weight table for regular spins.
// wildEnabled gates the Wild symbol, off by default like GoldEnabled: the
// pinned base symbol set is high-pay/low-pay/scatter only, and Wild is an
// optional variant rather than an always-on mechanic.
func BaseGameWeights(wildEnabled bool) WeightTable {
	return scaleRates(baseGameRates, weightPrecision, wildEnabled)
}

// FreeSpinWeights returns the spawn weight table used while a free-spin
// session is active. See BaseGameWeights for wildEnabled.
func FreeSpinWeights(wildEnabled bool) WeightTable {
	return scaleRates(freeSpinRates, weightPrecision, wildEnabled)
}
