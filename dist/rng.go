// SPDX-License-Identifier: MIT

// Package dist - RNG utilities shared by sampling and optimizer restarts.
//
// This file centralizes deterministic random generation.
//
// Goals:
//   - Determinism: same seed ⇒ identical samples across runs.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//
// Concurrency:
//   - *rand.Rand is NOT goroutine-safe. Do not share one across goroutines.
//   - Use DeriveRand to create independent streams for parallel workers.
package dist

import "math/rand/v2"

// DefaultSeed is the fixed “zero” seed used when callers pass seed==0.
const DefaultSeed uint64 = 1

// NewRand returns a deterministic PCG-backed *rand.Rand.
// Policy: seed==0 ⇒ use DefaultSeed; otherwise use the provided seed verbatim.
//
// Complexity: O(1).
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}

	return rand.New(rand.NewPCG(seed, deriveSeed(seed, 0)))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed
// with a SplitMix64-style avalanche, so that neighbouring streams are
// uncorrelated.
//
// Complexity: O(1).
func deriveSeed(parent, stream uint64) uint64 {
	var x uint64
	x = parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return x
}

// DeriveRand creates an independent deterministic stream from base and a
// stream identifier. If base==nil, DefaultSeed is used as the parent.
// Otherwise base.Uint64() is consumed once, so reusing a stream id on the same
// base still yields distinct children.
//
// Complexity: O(1).
func DeriveRand(base *rand.Rand, stream uint64) *rand.Rand {
	var parent uint64
	if base == nil {
		parent = DefaultSeed
	} else {
		parent = base.Uint64()
	}
	s := deriveSeed(parent, stream)

	return rand.New(rand.NewPCG(s, deriveSeed(s, stream+1)))
}

// Sample draws n variates of d from a stream seeded with seed.
// n <= 0 yields an empty slice.
//
// Complexity: O(n) draws.
func Sample(d Distribution, n int, seed uint64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	rnd := NewRand(seed)
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand(rnd)
	}

	return out
}
