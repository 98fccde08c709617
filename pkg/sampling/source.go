/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: source.go
Description: Random sources for the sampler. Production runs use seeded math/rand streams,
one per worker; tests replay recorded draw sequences for exact reproducibility.
*/

package sampling

import (
	"math/rand"
)

// Source produces uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded math/rand stream.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// SequenceSource replays a recorded sequence of draws, cycling when exhausted.
// It is not safe for concurrent use.
type SequenceSource struct {
	values []float64
	pos    int
}

// NewSequenceSource creates a source that replays values in order.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

// Float64 returns the next recorded value (0 for an empty sequence).
func (s *SequenceSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// deriveSeed mixes a base seed with a stream index (splitmix64 finalizer)
// so that neighbouring workers get unrelated streams.
func deriveSeed(base int64, index uint64) int64 {
	z := uint64(base) + (index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
