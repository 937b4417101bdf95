package randutil

import (
	cryptorand "crypto/rand"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewCrypto returns a *rand.Rand backed by a ChaCha8 generator keyed
// from the operating system's entropy source. Used for production
// shuffles where reproducibility is not wanted.
func NewCrypto() *rand.Rand {
	var key [32]byte
	if _, err := cryptorand.Read(key[:]); err != nil {
		// crypto/rand never fails on supported platforms; if it somehow
		// does there is no safe fallback for a shuffle source.
		panic("randutil: reading entropy: " + err.Error())
	}
	return rand.New(rand.NewChaCha8(key))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
