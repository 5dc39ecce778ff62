// Package rng provides the seeded, platform-independent random source used to
// lay out falling pieces.
//
// The generator is deliberately tiny and fully specified (mulberry32 over a
// 32-bit state) so that a given seed replays the same animation on every
// platform and Go release. math/rand/v2 makes no such cross-version promise
// for its convenience functions.
//
// Seeds are derived from text with [Hash] (FNV-1a), so the same user, total
// and reference date always produce the same picture:
//
//	base := rng.BaseSeed("octocat", 1234, time.Now())
//	for run := range 10 {
//	    next := rng.New(rng.RunSeed(base, run))
//	    _ = next() // [0, 1)
//	}
package rng

import (
	"strconv"
	"strings"
	"time"
)

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619

	// increment is the odd Weyl step added to the state on every draw.
	increment uint32 = 0x6D2B79F5

	// RunPrime spaces the seeds of consecutive runs apart. Any large odd
	// constant works; this one is Knuth's multiplicative hash constant.
	RunPrime uint32 = 2654435761
)

// Source returns the next value of a deterministic sequence in [0, 1).
type Source func() float64

// Hash returns the 32-bit FNV-1a hash of text's UTF-8 bytes.
func Hash(text string) uint32 {
	h := fnvOffset32
	for i := 0; i < len(text); i++ {
		h ^= uint32(text[i])
		h *= fnvPrime32
	}
	return h
}

// New returns a mulberry32 source seeded with seed. Each Source owns its
// state; two sources with the same seed yield identical sequences.
func New(seed uint32) Source {
	state := seed
	return func() float64 {
		state += increment
		t := state
		t = (t ^ t>>15) * (t | 1)
		t ^= t + (t^t>>7)*(t|61)
		return float64(t^t>>14) / 4294967296.0
	}
}

// Intn returns a uniform index in [0, n). It panics if n <= 0.
func (s Source) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	i := int(s() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// BaseSeed derives the seed family base from the identity, the aggregate
// activity and the reference date (day precision, UTC).
func BaseSeed(identity string, total int, ref time.Time) uint32 {
	var b strings.Builder
	b.WriteString(identity)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(total))
	b.WriteByte('|')
	b.WriteString(ref.UTC().Format(time.DateOnly))
	return Hash(b.String())
}

// RunSeed returns the seed of run i in the family rooted at base.
// Arithmetic wraps modulo 2^32.
func RunSeed(base uint32, run int) uint32 {
	return base + uint32(run)*RunPrime
}
