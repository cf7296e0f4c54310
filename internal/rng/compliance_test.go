package rng

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chiSquareUniform10 bins N draws in [0,1) into 10 equal-width buckets and
// returns the chi-square statistic against a uniform null hypothesis.
func chiSquareUniform10(draws []float64) float64 {
	const bins = 10
	var counts [bins]int
	for _, d := range draws {
		b := int(d * bins)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	expected := float64(len(draws)) / bins
	stat := 0.0
	for _, c := range counts {
		diff := float64(c) - expected
		stat += diff * diff / expected
	}
	return stat
}

// chiSquare95Crit9DoF is the 95th-percentile critical value for a chi-square
// distribution with 9 degrees of freedom (10 bins - 1), matching the
// compliance contract every RNG implementation must satisfy.
const chiSquare95Crit9DoF = 16.92

func testFloat64Compliance(t *testing.T, r RNG) {
	const n = 10000
	draws := make([]float64, n)
	sum := 0.0
	for i := range draws {
		v, err := r.Float64()
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
		draws[i] = v
		sum += v
	}

	mean := sum / n
	assert.Less(t, math.Abs(mean-0.5), 0.01, "uniform mean drifted outside tolerance: %v", mean)

	stat := chiSquareUniform10(draws)
	assert.Less(t, stat, chiSquare95Crit9DoF, "chi-square statistic %v exceeds the 95%% critical value", stat)
}

func TestCryptoRNG_Float64_IsUniformlyDistributed(t *testing.T) {
	testFloat64Compliance(t, NewCryptoRNG())
}

func TestSeededRNG_Float64_IsUniformlyDistributed(t *testing.T) {
	testFloat64Compliance(t, NewSeededRNG("rng-compliance-fixed-seed"))
}

func TestSeededRNG_IntInRange_AvoidsModuloBiasAcrossManyDraws(t *testing.T) {
	r := NewSeededRNG("modulo-bias-seed")
	const n = 10000
	var counts [6]int
	for i := 0; i < n; i++ {
		v, err := r.IntRange(0, 5)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, 5)
		counts[v]++
	}
	expected := float64(n) / 6
	for _, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.25, "bucket frequency drifted too far from uniform")
	}
}
