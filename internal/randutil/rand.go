// Package randutil builds the random sources used to shuffle the shoe.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from seed, so tests and
// simulations can replay the exact same shoe order.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSecure returns a ChaCha8 generator keyed from the operating system's
// entropy source. Used for live play where the shoe order must not be predictable.
func NewSecure() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand only fails when the platform has no entropy source at all
		panic("randutil: failed to read entropy: " + err.Error())
	}
	return rand.New(rand.NewChaCha8(seed))
}

// Seed returns a random int64 suitable for New, used when the caller wants a
// reproducible run but did not pick a seed.
func Seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("randutil: failed to read entropy: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
