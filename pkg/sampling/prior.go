/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: prior.go
Description: Prior-sampling estimator. Draws assignments with evidence fixed at generation
time and reports the fraction that satisfies a target predicate, with an explicit no-data
result when nothing matched.
*/

package sampling

import (
	"context"
	"errors"
	"fmt"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
)

var (
	// ErrNoData is returned by Estimate.Ratio when no sample was drawn or none hit the target.
	ErrNoData = errors.New("no data")
	// ErrInsufficientSamples is returned when aggregating over zero rejection survivors.
	ErrInsufficientSamples = errors.New("insufficient samples")
	// ErrInvalidSampleCount is returned for a negative sample count.
	ErrInvalidSampleCount = errors.New("invalid sample count")
)

// Predicate tests a complete assignment.
type Predicate func(network.Assignment) bool

// Equals returns a predicate that holds when variable has value.
func Equals(variable, value string) Predicate {
	return func(a network.Assignment) bool {
		return a[variable] == value
	}
}

// MatchesAll returns a predicate that holds when every pair of e holds.
func MatchesAll(e network.Evidence) Predicate {
	return e.Matches
}

// Estimate is the outcome of a prior-sampling run.
type Estimate struct {
	RunID   string `json:"run_id,omitempty"`
	Samples int    `json:"samples"`
	Hits    int    `json:"hits"`
}

// NoData reports whether the estimate has no usable ratio.
func (e Estimate) NoData() bool {
	return e.Samples == 0 || e.Hits == 0
}

// Ratio returns Hits/Samples, or ErrNoData.
func (e Estimate) Ratio() (float64, error) {
	if e.NoData() {
		return 0, ErrNoData
	}
	return float64(e.Hits) / float64(e.Samples), nil
}

// String renders the ratio or "no data".
func (e Estimate) String() string {
	ratio, err := e.Ratio()
	if err != nil {
		return fmt.Sprintf("no data (%d/%d)", e.Hits, e.Samples)
	}
	return fmt.Sprintf("%.4f (%d/%d)", ratio, e.Hits, e.Samples)
}

func (e Estimate) merge(other Estimate) Estimate {
	e.Samples += other.Samples
	e.Hits += other.Hits
	return e
}

// PriorEstimator estimates probabilities by prior sampling.
type PriorEstimator struct {
	sampler *Sampler
}

// NewPriorEstimator creates an estimator drawing from sampler.
func NewPriorEstimator(sampler *Sampler) *PriorEstimator {
	return &PriorEstimator{sampler: sampler}
}

// Estimate draws n assignments with evidence pinned and counts those
// satisfying target. Cancellation is checked after every completed sample.
func (p *PriorEstimator) Estimate(ctx context.Context, n int, evidence network.Evidence, target Predicate) (Estimate, error) {
	if n < 0 {
		return Estimate{}, fmt.Errorf("%w: %d", ErrInvalidSampleCount, n)
	}
	if target == nil {
		return Estimate{}, fmt.Errorf("target predicate is required")
	}
	if err := p.sampler.net.CheckEvidence(evidence); err != nil {
		return Estimate{}, fmt.Errorf("invalid evidence: %w", err)
	}

	var est Estimate
	for i := 0; i < n; i++ {
		a, err := p.sampler.draw(evidence)
		if err != nil {
			return est, err
		}
		est.Samples++
		if target(a) {
			est.Hits++
		}
		if err := ctx.Err(); err != nil {
			return est, err
		}
	}
	return est, nil
}
