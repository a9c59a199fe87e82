package rng

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestNewSeeded(t *testing.T) {
	a := assert.New(t)

	g1 := NewSeeded(42)
	g2 := NewSeeded(42)
	for i := 0; i < 10; i++ {
		a.Equal(g1.Intn(100), g2.Intn(100))
	}
}

func TestChance(t *testing.T) {
	a := assert.New(t)
	g := NewSeeded(1)

	for i := 0; i < 100; i++ {
		a.False(Chance(g, 0))
		a.True(Chance(g, 1))
	}

	hits := 0
	for i := 0; i < 1000; i++ {
		if Chance(g, 0.5) {
			hits++
		}
	}

	// it's possible this could fail, but not likely
	a.InDelta(500, hits, 100)
}
