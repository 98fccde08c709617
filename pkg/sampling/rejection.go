/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rejection.go
Description: Rejection-sampling estimator. Draws unconditional assignments, keeps the ones
consistent with a filter, and aggregates conditional distributions over the survivors.
*/

package sampling

import (
	"context"
	"fmt"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/sirupsen/logrus"
)

// Rejection holds the survivors of a rejection-sampling run.
type Rejection struct {
	RunID     string               `json:"run_id,omitempty"`
	Drawn     int                  `json:"drawn"`
	Filter    network.Evidence     `json:"filter"`
	Survivors []network.Assignment `json:"survivors"`

	net *network.Network
}

// Accepted returns the number of survivors.
func (r *Rejection) Accepted() int { return len(r.Survivors) }

// AcceptanceRate returns survivors/drawn, 0 when nothing was drawn.
func (r *Rejection) AcceptanceRate() float64 {
	if r.Drawn == 0 {
		return 0
	}
	return float64(len(r.Survivors)) / float64(r.Drawn)
}

// Counts returns how often each value of variable occurs among survivors,
// in domain order.
func (r *Rejection) Counts(variable string) ([]int, []string, error) {
	v, err := r.net.Variable(variable)
	if err != nil {
		return nil, nil, err
	}
	domain := v.Domain()
	index := make(map[string]int, len(domain))
	for i, value := range domain {
		index[value] = i
	}
	counts := make([]int, len(domain))
	for _, a := range r.Survivors {
		if i, ok := index[a[variable]]; ok {
			counts[i]++
		}
	}
	return counts, domain, nil
}

// Distribution normalizes the value counts of variable by the survivor count.
func (r *Rejection) Distribution(variable string) (network.Distribution, error) {
	counts, domain, err := r.Counts(variable)
	if err != nil {
		return nil, err
	}
	if len(r.Survivors) == 0 {
		return nil, fmt.Errorf("%w: no survivors out of %d draws", ErrInsufficientSamples, r.Drawn)
	}
	total := float64(len(r.Survivors))
	dist := make(network.Distribution, len(domain))
	for i, value := range domain {
		dist[i] = network.Outcome{Value: value, P: float64(counts[i]) / total}
	}
	return dist, nil
}

// Probability returns the survivor frequency of variable=value.
func (r *Rejection) Probability(variable, value string) (float64, error) {
	dist, err := r.Distribution(variable)
	if err != nil {
		return 0, err
	}
	v, _ := r.net.Variable(variable)
	if !v.HasValue(value) {
		return 0, fmt.Errorf("%w: %q for %q", network.ErrUnknownValue, value, variable)
	}
	return dist.Prob(value), nil
}

func (r *Rejection) merge(other *Rejection) {
	r.Drawn += other.Drawn
	r.Survivors = append(r.Survivors, other.Survivors...)
}

// RejectionEstimator draws unconditionally and filters afterwards.
type RejectionEstimator struct {
	sampler *Sampler
}

// NewRejectionEstimator creates an estimator drawing from sampler.
func NewRejectionEstimator(sampler *Sampler) *RejectionEstimator {
	return &RejectionEstimator{sampler: sampler}
}

// Sample draws n unconditional assignments and keeps those matching every
// pair of filter. A filter that cannot match yields no survivors, not an error.
func (e *RejectionEstimator) Sample(ctx context.Context, n int, filter network.Evidence) (*Rejection, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleCount, n)
	}
	if err := e.sampler.net.CheckEvidence(filter); err != nil {
		warnImpossibleFilter(e.sampler.logger, filter, err)
	}
	return e.sample(ctx, n, filter)
}

// sample is Sample without the argument checks. The engine checks once per run.
func (e *RejectionEstimator) sample(ctx context.Context, n int, filter network.Evidence) (*Rejection, error) {
	result := &Rejection{
		Filter:    filter,
		Survivors: []network.Assignment{},
		net:       e.sampler.net,
	}
	for i := 0; i < n; i++ {
		a, err := e.sampler.draw(nil)
		if err != nil {
			return result, err
		}
		result.Drawn++
		if filter.Matches(a) {
			result.Survivors = append(result.Survivors, a)
			e.sampler.stats.incAccepted()
		} else {
			e.sampler.stats.incRejected()
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func warnImpossibleFilter(logger logrus.FieldLogger, filter network.Evidence, reason error) {
	logger.WithFields(logrus.Fields{
		"filter": filter,
		"reason": reason.Error(),
	}).Warn("Rejection filter can never match")
}
