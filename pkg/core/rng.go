package core

import "math/rand/v2"

// Rand is the randomness capability consumed by the road initializer and the
// step engine. *rand.Rand and *RNG both satisfy it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// NewStreamRNG creates a deterministic RNG for one of several independent
// streams sharing a seed, e.g. one per simulated road.
func NewStreamRNG(seed int64, stream uint64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), stream))}
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Float64 returns a random float64 in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
