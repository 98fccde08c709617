/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stats.go
Description: Sampling statistics shared across workers. Counters are updated atomically so
that parallel samplers can report into a single Stats value.
*/

package sampling

import (
	"sync/atomic"
)

// Stats tracks sampling counters. The zero value is ready to use.
type Stats struct {
	Draws             int64 // complete assignments produced
	Pinned            int64 // variables assigned from evidence instead of drawn
	ResidualFallbacks int64 // draws that landed in residual probability mass
	Accepted          int64 // rejection samples kept
	Rejected          int64 // rejection samples discarded
	Runs              int64 // estimation runs completed
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Draws             int64 `json:"draws"`
	Pinned            int64 `json:"pinned"`
	ResidualFallbacks int64 `json:"residual_fallbacks"`
	Accepted          int64 `json:"accepted"`
	Rejected          int64 `json:"rejected"`
	Runs              int64 `json:"runs"`
}

func (s *Stats) incDraws() { atomic.AddInt64(&s.Draws, 1) }
func (s *Stats) addPinned(n int64) { atomic.AddInt64(&s.Pinned, n) }
func (s *Stats) incResidual() { atomic.AddInt64(&s.ResidualFallbacks, 1) }
func (s *Stats) incAccepted() { atomic.AddInt64(&s.Accepted, 1) }
func (s *Stats) incRejected() { atomic.AddInt64(&s.Rejected, 1) }
func (s *Stats) incRuns() { atomic.AddInt64(&s.Runs, 1) }

func (s *Stats) add(o StatsSnapshot) {
	atomic.AddInt64(&s.Draws, o.Draws)
	atomic.AddInt64(&s.Pinned, o.Pinned)
	atomic.AddInt64(&s.ResidualFallbacks, o.ResidualFallbacks)
	atomic.AddInt64(&s.Accepted, o.Accepted)
	atomic.AddInt64(&s.Rejected, o.Rejected)
	atomic.AddInt64(&s.Runs, o.Runs)
}

// Snapshot copies the counters. Each counter is read atomically on its own.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Draws:             atomic.LoadInt64(&s.Draws),
		Pinned:            atomic.LoadInt64(&s.Pinned),
		ResidualFallbacks: atomic.LoadInt64(&s.ResidualFallbacks),
		Accepted:          atomic.LoadInt64(&s.Accepted),
		Rejected:          atomic.LoadInt64(&s.Rejected),
		Runs:              atomic.LoadInt64(&s.Runs),
	}
}
