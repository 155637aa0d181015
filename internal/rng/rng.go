// Package rng centralizes every random decision the engine makes. Each game
// session owns one Source, so tests seed a source and replay a session
// deterministically while production sessions draw from a time-seeded stream.
package rng

import (
	"math/rand"
	"time"
)

// Source is the random primitive set used by floor generation, combat, the
// forge, and the merchant. All probability rolls go through here; no package
// calls the global rand directly.
type Source interface {
	// Float returns a uniform value in [0, 1).
	Float() float64

	// IntRange returns a uniform value in [lo, hi] inclusive. lo must be <= hi.
	IntRange(lo, hi int) int

	// WeightedChoice returns an index into weights picked proportionally.
	// Non-positive weights are treated as zero. Returns the last index when
	// all weights are zero.
	WeightedChoice(weights []float64) int

	// WeightedSample returns k distinct indices drawn without replacement,
	// proportionally to weights. Returns fewer than k when weights run out.
	WeightedSample(weights []float64, k int) []int
}

type source struct {
	r *rand.Rand
}

// New returns a Source seeded from the current time.
func New() Source {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Source for the given seed.
func NewSeeded(seed int64) Source {
	return &source{r: rand.New(rand.NewSource(seed))}
}

func (s *source) Float() float64 {
	return s.r.Float64()
}

func (s *source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

func (s *source) WeightedChoice(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return len(weights) - 1
	}

	roll := s.r.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func (s *source) WeightedSample(weights []float64, k int) []int {
	remaining := make([]float64, len(weights))
	copy(remaining, weights)

	picked := make([]int, 0, k)
	for len(picked) < k {
		total := 0.0
		for _, w := range remaining {
			if w > 0 {
				total += w
			}
		}
		if total <= 0 {
			break
		}

		roll := s.r.Float64() * total
		for i, w := range remaining {
			if w <= 0 {
				continue
			}
			roll -= w
			if roll < 0 {
				picked = append(picked, i)
				remaining[i] = 0
				break
			}
		}
	}
	return picked
}
