// Package rng provides the seeded random source shared by the arrival
// generator and the scheduler.
package rng

import (
	"time"

	"github.com/MichaelTJones/pcg"
)

// Source yields uniformly distributed values in [0, 1).
type Source interface {
	Float64() float64
}

// Rand is a PCG32 backed Source.
type Rand struct {
	r *pcg.PCG32
}

const sequence = 0xda3e39cb94b95bdb

// New returns a Rand seeded with seed. A zero seed picks one from the clock.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &Rand{r: pcg.NewPCG32()}
	r.Seed(seed)
	return r
}

// Seed resets the generator state.
func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), sequence)
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.r.Random()) / (1 << 32)
}

// Range draws uniformly from [lo, hi]. It returns lo when hi <= lo.
func Range(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}

// Fixed is a Source that replays a fixed sequence of values, repeating the
// last one once exhausted. Used for deterministic tests and replays.
type Fixed struct {
	Values []float64
	idx    int
}

// Float64 returns the next value of the sequence.
func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	if f.idx >= len(f.Values) {
		return f.Values[len(f.Values)-1]
	}
	v := f.Values[f.idx]
	f.idx++
	return v
}
