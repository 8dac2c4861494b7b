// Package rng provides the random source shared by every probabilistic
// engine. Keeping the source behind an interface lets tests script the
// draws without changing production behavior.
package rng

import (
	"math/rand"
	"time"
)

// Source is the subset of math/rand used by the engines.
type Source interface {
	// Float64 returns a draw in [0.0, 1.0).
	Float64() float64
	// Intn returns a draw in [0, n). It panics if n <= 0.
	Intn(n int) int
}

// New returns a seedable Source backed by math/rand.
func New(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// NewDefault returns a time-seeded Source for production use.
func NewDefault() Source {
	return New(time.Now().UnixNano())
}

// Sequence is a scripted Source. Float64 draws cycle through Floats and
// Intn draws cycle through Ints. Useful for forcing a specific outcome
// in tests.
type Sequence struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

func (s *Sequence) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn with non-positive n")
	}
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[s.ii%len(s.Ints)] % n
	s.ii++
	return v
}

var _ Source = (*Sequence)(nil)
