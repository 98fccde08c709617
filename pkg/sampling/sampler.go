/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sampler.go
Description: Forward sampler for discrete Bayesian networks. Walks the variables in
topological order, pins evidence, and draws every other variable from its CPT row using
cumulative interval selection with an explicit residual-mass policy.
*/

package sampling

import (
	"fmt"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/sirupsen/logrus"
)

// Sampler draws complete assignments from a network. A Sampler owns its
// random source and is not safe for concurrent use; create one per worker.
type Sampler struct {
	net    *network.Network
	order  []string
	src    Source
	stats  *Stats
	logger logrus.FieldLogger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithStats makes the sampler report into stats.
func WithStats(stats *Stats) Option {
	return func(s *Sampler) {
		if stats != nil {
			s.stats = stats
		}
	}
}

// WithLogger sets the logger used for residual-mass events.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Sampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSampler creates a sampler over net drawing from src.
func NewSampler(net *network.Network, src Source, opts ...Option) *Sampler {
	discard := logrus.New()
	discard.SetLevel(logrus.PanicLevel)

	s := &Sampler{
		net:    net,
		order:  net.Order(),
		src:    src,
		stats:  &Stats{},
		logger: discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Network returns the network the sampler draws from.
func (s *Sampler) Network() *network.Network { return s.net }

// Stats returns the counters the sampler reports into.
func (s *Sampler) Stats() *Stats { return s.stats }

// Draw produces one complete assignment. Variables present in evidence keep
// their evidence value and consume no random draw.
func (s *Sampler) Draw(evidence network.Evidence) (network.Assignment, error) {
	if err := s.net.CheckEvidence(evidence); err != nil {
		return nil, fmt.Errorf("invalid evidence: %w", err)
	}
	return s.draw(evidence)
}

// draw assumes evidence has already been checked against the network.
func (s *Sampler) draw(evidence network.Evidence) (network.Assignment, error) {
	a := make(network.Assignment, len(s.order))
	var pinned int64

	for _, name := range s.order {
		if value, ok := evidence[name]; ok {
			a[name] = value
			pinned++
			continue
		}

		dist, err := s.net.Lookup(name, a)
		if err != nil {
			return nil, fmt.Errorf("draw %q: %w", name, err)
		}

		r := s.src.Float64()
		value, residual := pick(dist, r)
		if residual {
			s.stats.incResidual()
			s.logger.WithFields(logrus.Fields{
				"variable": name,
				"draw":     r,
				"mass":     dist.Sum(),
				"value":    value,
			}).Debug("Draw fell in residual probability mass")
		}
		a[name] = value
	}

	if pinned > 0 {
		s.stats.addPinned(pinned)
	}
	s.stats.incDraws()
	return a, nil
}

// pick selects the outcome whose interval (massBefore, massBefore+p] contains r,
// with the first interval closed at 0. Zero-mass outcomes are never selected.
// When r lies above the accumulated mass the last outcome with positive mass
// absorbs it and residual is true.
func pick(dist network.Distribution, r float64) (value string, residual bool) {
	cum := 0.0
	last := -1
	for i, o := range dist {
		if o.P <= 0 {
			continue
		}
		last = i
		cum += o.P
		if r <= cum {
			return o.Value, false
		}
	}
	if last < 0 {
		// Validated networks always carry mass; keep the draw total anyway.
		return dist[len(dist)-1].Value, true
	}
	return dist[last].Value, true
}
