package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// SeededRNG is a deterministic RNG driven by a fixed seed (a spin hash),
// expanded into an effectively unbounded byte stream via repeated SHA256
// hashing of seed||counter. Given the same seed, it reproduces bit-identical
// output every time — the property the engine needs to let a disputed spin
// be replayed and independently re-derived from its recorded spin hash.
//
// It implements the same RNG interface as CryptoRNG so the grid generator
// and engine never need to know which one they were handed.
type SeededRNG struct {
	seed    []byte
	counter uint64
	buf     []byte
}

// NewSeededRNG builds a SeededRNG from a hex or raw seed string (typically a
// spin hash from the HashChain).
func NewSeededRNG(seed string) *SeededRNG {
	return &SeededRNG{seed: []byte(seed)}
}

func (r *SeededRNG) nextBlock() []byte {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], r.counter)
	r.counter++
	h := sha256.New()
	h.Write(r.seed)
	h.Write(ctr[:])
	return h.Sum(nil)
}

// Bytes fills b with deterministic pseudo-random bytes drawn from the
// expanded seed stream.
func (r *SeededRNG) Bytes(b []byte) error {
	for len(b) > 0 {
		if len(r.buf) == 0 {
			r.buf = r.nextBlock()
		}
		n := copy(b, r.buf)
		b = b[n:]
		r.buf = r.buf[n:]
	}
	return nil
}

// Int returns a deterministic integer in [0, max).
func (r *SeededRNG) Int(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("rng: max must be positive, got %d", max)
	}
	// Draws at or above limit are rejected so every residue mod max is
	// equally likely (no modulo bias).
	limit := ^uint64(0) - ^uint64(0)%uint64(max)
	var b [8]byte
	for {
		if err := r.Bytes(b[:]); err != nil {
			return 0, err
		}
		v := binary.BigEndian.Uint64(b[:])
		if v < limit {
			return int(v % uint64(max)), nil
		}
	}
}

// IntRange returns a deterministic integer in [min, max].
func (r *SeededRNG) IntRange(min, max int) (int, error) {
	if min > max {
		return 0, fmt.Errorf("rng: min (%d) must be <= max (%d)", min, max)
	}
	n, err := r.Int(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + n, nil
}

// Float64 returns a deterministic value in [0.0, 1.0).
func (r *SeededRNG) Float64() (float64, error) {
	const precision = 1 << 53
	n, err := r.Int(precision)
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(precision), nil
}

// Shuffle performs a deterministic Fisher-Yates shuffle.
func (r *SeededRNG) Shuffle(n int, swap func(i, j int)) error {
	for i := n - 1; i > 0; i-- {
		j, err := r.Int(i + 1)
		if err != nil {
			return err
		}
		swap(i, j)
	}
	return nil
}

// WeightedChoice deterministically selects an index proportional to weights.
func (r *SeededRNG) WeightedChoice(weights []int) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("rng: weights cannot be empty")
	}
	total := 0
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("rng: weights must be non-negative")
		}
		total += w
	}
	if total == 0 {
		return 0, fmt.Errorf("rng: total weight must be positive")
	}
	pick, err := r.Int(total)
	if err != nil {
		return 0, err
	}
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if pick < cumulative {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}

var _ RNG = (*SeededRNG)(nil)
var _ RNG = (*CryptoRNG)(nil)
