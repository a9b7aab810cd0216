// Package randutil provides the seeded pseudo-random source used for every
// shuffle and dealer pick in the game, so that a seed fully determines a game.
package randutil

import (
	"errors"
	"fmt"
)

const (
	// increment is the odd Weyl-sequence step added to the state on every draw.
	increment uint32 = 0x6d2b79f5

	floatScale = 1 << 32
)

// ErrDomain is returned when an argument lies outside the generator's domain.
var ErrDomain = errors.New("randutil: argument out of domain")

// RNG is a 32-bit mulberry-style generator. The zero value is a valid
// generator seeded with 0. An RNG is not safe for concurrent use.
type RNG struct {
	state uint32
}

// New returns a generator seeded from the low 32 bits of seed. Identical seeds
// always yield identical sequences.
func New(seed int64) *RNG {
	return &RNG{state: uint32(seed)}
}

// next advances the state and returns the scrambled 32-bit output.
func (r *RNG) next() uint32 {
	r.state += increment
	x := r.state
	x = (x ^ (x >> 15)) * (x | 1)
	x ^= x + (x^(x>>7))*(x|61)
	return x ^ (x >> 14)
}

// Uint32 returns the next raw 32-bit output.
func (r *RNG) Uint32() uint32 {
	return r.next()
}

// NextFloat returns a float64 in [0, 1).
func (r *RNG) NextFloat() float64 {
	return float64(r.next()) / floatScale
}

// NextInt returns an int in [0, maxExclusive). It fails with ErrDomain when
// maxExclusive is not positive.
func (r *RNG) NextInt(maxExclusive int) (int, error) {
	if maxExclusive <= 0 {
		return 0, fmt.Errorf("%w: maxExclusive must be positive, got %d", ErrDomain, maxExclusive)
	}
	return r.intn(maxExclusive), nil
}

// IntN is NextInt for callers that have already established n > 0. It panics
// otherwise, mirroring math/rand.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		panic("randutil: invalid argument to IntN")
	}
	return r.intn(n)
}

func (r *RNG) intn(n int) int {
	return int(r.NextFloat() * float64(n))
}
