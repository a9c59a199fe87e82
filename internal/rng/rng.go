package rng

import (
	"math/rand"
	"time"
)

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int

	// Float64 returns a random number in [0.0, 1.0)
	Float64() float64
}

// NewSeeded returns a deterministic generator
// A seed of 0 seeds from the current time
func NewSeeded(seed int64) Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(seed)) // nolint:gosec
}

// Chance returns true with the probability p
func Chance(g Generator, p float64) bool {
	if p <= 0 {
		return false
	}

	if p >= 1 {
		return true
	}

	return g.Float64() < p
}
