package runtime

import "math/rand/v2"

// RandomSource yields uniform draws in [0,1).
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a function to RandomSource.
type RandomFunc func() float64

// Float64 implements RandomSource.
func (f RandomFunc) Float64() float64 {
	return f()
}

// DefaultRandom returns the process-wide generator.
func DefaultRandom() RandomSource {
	return RandomFunc(rand.Float64)
}

// Sequence replays a fixed list of draws, cycling when exhausted.
// Useful for reproducible demos and tests.
type Sequence struct {
	draws []float64
	next  int
}

// NewSequence creates a replaying source. It panics on an empty list.
func NewSequence(draws ...float64) *Sequence {
	if len(draws) == 0 {
		panic("runtime: empty draw sequence")
	}
	return &Sequence{draws: draws}
}

// Float64 implements RandomSource.
func (q *Sequence) Float64() float64 {
	v := q.draws[q.next%len(q.draws)]
	q.next++
	return v
}

// Seeded returns a deterministic PCG-backed source.
func Seeded(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
