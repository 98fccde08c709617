/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: estimators_test.go
Description: Tests for the prior and rejection estimators. Compares estimates against exact
enumeration and covers the no-data and empty-survivor boundaries.
*/

package sampling_test

import (
	"context"
	"testing"

	"github.com/kleascm/bayesnet-sampler/pkg/catalog"
	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/kleascm/bayesnet-sampler/pkg/sampling"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exact sums the joint probability of every assignment matching both
// evidence and target, divided by the mass matching evidence.
func exact(t *testing.T, net *network.Network, evidence, target network.Evidence) float64 {
	t.Helper()
	order := net.Order()
	var joint, matched float64

	var walk func(i int, a network.Assignment, p float64)
	walk = func(i int, a network.Assignment, p float64) {
		if i == len(order) {
			if evidence.Matches(a) {
				joint += p
				if target.Matches(a) {
					matched += p
				}
			}
			return
		}
		dist, err := net.Lookup(order[i], a)
		require.NoError(t, err)
		for _, o := range dist {
			if o.P == 0 {
				continue
			}
			a[order[i]] = o.Value
			walk(i+1, a, p*o.P)
		}
		delete(a, order[i])
	}
	walk(0, network.Assignment{}, 1)

	require.Greater(t, joint, 0.0)
	return matched / joint
}

// TestPriorScenarioCertain tests a target that always holds under the evidence
func TestPriorScenarioCertain(t *testing.T) {
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(11))
	est, err := sampling.NewPriorEstimator(s).Estimate(context.Background(), 10000, network.Evidence{"R": "a"}, sampling.Equals("C", "x"))
	require.NoError(t, err)

	ratio, err := est.Ratio()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ratio, 1e-9)
	assert.Equal(t, 10000, est.Samples)
}

// TestPriorZeroSamples tests that no samples yields no data
func TestPriorZeroSamples(t *testing.T) {
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(1))
	est, err := sampling.NewPriorEstimator(s).Estimate(context.Background(), 0, nil, sampling.Equals("C", "x"))
	require.NoError(t, err)

	assert.True(t, est.NoData())
	_, err = est.Ratio()
	assert.ErrorIs(t, err, sampling.ErrNoData)
	assert.Contains(t, est.String(), "no data")
}

// TestPriorNoHits tests that a target that never holds yields no data
func TestPriorNoHits(t *testing.T) {
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(1))
	est, err := sampling.NewPriorEstimator(s).Estimate(context.Background(), 500, network.Evidence{"R": "b"}, sampling.Equals("C", "x"))
	require.NoError(t, err)

	assert.Equal(t, 500, est.Samples)
	assert.Equal(t, 0, est.Hits)
	_, err = est.Ratio()
	assert.ErrorIs(t, err, sampling.ErrNoData)
}

// TestPriorInvalidInput tests argument validation
func TestPriorInvalidInput(t *testing.T) {
	p := sampling.NewPriorEstimator(sampling.NewSampler(twoVar(t), sampling.NewSource(1)))
	ctx := context.Background()

	_, err := p.Estimate(ctx, -1, nil, sampling.Equals("C", "x"))
	assert.ErrorIs(t, err, sampling.ErrInvalidSampleCount)

	_, err = p.Estimate(ctx, 10, nil, nil)
	assert.Error(t, err)

	_, err = p.Estimate(ctx, 10, network.Evidence{"R": "z"}, sampling.Equals("C", "x"))
	assert.ErrorIs(t, err, network.ErrUnknownValue)
}

// TestPriorMatchesExact tests prior estimates against exact enumeration
func TestPriorMatchesExact(t *testing.T) {
	net := catalog.Race()
	s := sampling.NewSampler(net, sampling.NewSource(2024))
	p := sampling.NewPriorEstimator(s)

	cases := []struct {
		name     string
		evidence network.Evidence
	}{
		{"marginal", nil},
		{"coldWet", network.Evidence{"Weather": "coldWet"}},
		{"long nice", network.Evidence{"Course": "long", "Weather": "nice"}},
	}
	target := network.Evidence{"HareWins": "win"}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est, err := p.Estimate(context.Background(), 40000, tc.evidence, sampling.MatchesAll(target))
			require.NoError(t, err)
			ratio, err := est.Ratio()
			require.NoError(t, err)
			assert.InDelta(t, exact(t, net, tc.evidence, target), ratio, 0.015)
		})
	}
}

// TestPriorCancelled tests that cancellation stops sampling after the current sample
func TestPriorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := sampling.NewPriorEstimator(sampling.NewSampler(twoVar(t), sampling.NewSource(1)))
	est, err := p.Estimate(ctx, 1000, nil, sampling.Equals("C", "x"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, est.Samples)
}

// TestRejectionScenarioFilter tests that survivors agree with the filter
func TestRejectionScenarioFilter(t *testing.T) {
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(5))
	res, err := sampling.NewRejectionEstimator(s).Sample(context.Background(), 10000, network.Evidence{"C": "y"})
	require.NoError(t, err)

	assert.Equal(t, 10000, res.Drawn)
	for _, a := range res.Survivors {
		assert.Equal(t, "b", a["R"])
		assert.Equal(t, "y", a["C"])
	}
	assert.InDelta(t, 5000, res.Accepted(), 300)
	assert.InDelta(t, 0.5, res.AcceptanceRate(), 0.03)

	p, err := res.Probability("R", "b")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	snap := s.Stats().Snapshot()
	assert.Equal(t, int64(res.Accepted()), snap.Accepted)
	assert.Equal(t, int64(10000-res.Accepted()), snap.Rejected)
}

// TestRejectionEmptyFilter tests that an empty filter keeps every sample
func TestRejectionEmptyFilter(t *testing.T) {
	s := sampling.NewSampler(catalog.Race(), sampling.NewSource(3))
	res, err := sampling.NewRejectionEstimator(s).Sample(context.Background(), 1234, network.Evidence{})
	require.NoError(t, err)

	assert.Equal(t, 1234, res.Drawn)
	assert.Equal(t, 1234, res.Accepted())
	assert.Equal(t, 1.0, res.AcceptanceRate())
}

// TestRejectionImpossibleFilter tests that an unmatchable filter yields no survivors
func TestRejectionImpossibleFilter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(3), sampling.WithLogger(logger))

	res, err := sampling.NewRejectionEstimator(s).Sample(context.Background(), 200, network.Evidence{"C": "z"})
	require.NoError(t, err)
	require.NotNil(t, res.Survivors)
	assert.Empty(t, res.Survivors)
	assert.Equal(t, 200, res.Drawn)
	assert.Equal(t, 0.0, res.AcceptanceRate())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)

	_, err = res.Distribution("R")
	assert.ErrorIs(t, err, sampling.ErrInsufficientSamples)
}

// TestRejectionZeroProbabilityFilter tests a valid value no sample can take
func TestRejectionZeroProbabilityFilter(t *testing.T) {
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(9))
	res, err := sampling.NewRejectionEstimator(s).Sample(context.Background(), 500, network.Evidence{"R": "a", "C": "y"})
	require.NoError(t, err)
	assert.Empty(t, res.Survivors)
}

// TestRejectionDistribution tests conditional distributions over survivors
func TestRejectionDistribution(t *testing.T) {
	net := catalog.Race()
	s := sampling.NewSampler(net, sampling.NewSource(77))
	filter := network.Evidence{"Course": "short", "HareWins": "lose"}

	res, err := sampling.NewRejectionEstimator(s).Sample(context.Background(), 60000, filter)
	require.NoError(t, err)

	dist, err := res.Distribution("Weather")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dist.Sum(), 1e-9)
	for _, value := range []string{"coldWet", "hot", "nice"} {
		want := exact(t, net, filter, network.Evidence{"Weather": value})
		assert.InDelta(t, want, dist.Prob(value), 0.02, value)
	}

	counts, domain, err := res.Counts("Weather")
	require.NoError(t, err)
	assert.Equal(t, []string{"coldWet", "hot", "nice"}, domain)
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, res.Accepted(), total)

	_, _, err = res.Counts("Nope")
	assert.ErrorIs(t, err, network.ErrUnknownVariable)
	_, err = res.Probability("Weather", "snow")
	assert.ErrorIs(t, err, network.ErrUnknownValue)
}

// TestRejectionInvalidCount tests a negative sample count
func TestRejectionInvalidCount(t *testing.T) {
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(1))
	_, err := sampling.NewRejectionEstimator(s).Sample(context.Background(), -5, nil)
	assert.ErrorIs(t, err, sampling.ErrInvalidSampleCount)
}
