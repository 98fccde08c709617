/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sampler_test.go
Description: Tests for the forward sampler. Covers completeness under adversarial draws,
determinism with recorded sequences, evidence pinning and residual-mass reporting.
*/

package sampling_test

import (
	"testing"

	"github.com/kleascm/bayesnet-sampler/pkg/catalog"
	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/kleascm/bayesnet-sampler/pkg/sampling"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoVar returns a root R {a,b} uniform and child C {x,y} with P(x|a)=1, P(x|b)=0
func twoVar(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.New(network.Definition{
		Name: "two",
		Variables: []network.VariableDef{
			{
				Name:   "R",
				Domain: []string{"a", "b"},
				Table:  []network.RowDef{{Probs: map[string]float64{"a": 0.5, "b": 0.5}}},
			},
			{
				Name:    "C",
				Domain:  []string{"x", "y"},
				Parents: []string{"R"},
				Table: []network.RowDef{
					{Given: []string{"a"}, Probs: map[string]float64{"x": 1.0, "y": 0.0}},
					{Given: []string{"b"}, Probs: map[string]float64{"x": 0.0, "y": 1.0}},
				},
			},
		},
	})
	require.NoError(t, err)
	return net
}

func assertComplete(t *testing.T, net *network.Network, a network.Assignment) {
	t.Helper()
	require.Len(t, a, net.Len())
	for _, name := range net.Order() {
		v, err := net.Variable(name)
		require.NoError(t, err)
		assert.True(t, v.HasValue(a[name]), "%s=%q", name, a[name])
	}
}

// TestDrawAdversarialSequences tests that every variable is assigned for extreme draws
func TestDrawAdversarialSequences(t *testing.T) {
	net := catalog.Race()
	sequences := map[string][]float64{
		"zero":      {0.0},
		"near zero": {1e-15},
		"near one":  {0.9999999999},
		"max float": {0.9999999999999999},
		"alternate": {0.0, 0.9999999999999999},
	}

	for name, seq := range sequences {
		t.Run(name, func(t *testing.T) {
			s := sampling.NewSampler(net, sampling.NewSequenceSource(seq...))
			for i := 0; i < 10; i++ {
				a, err := s.Draw(nil)
				require.NoError(t, err)
				assertComplete(t, net, a)
			}
		})
	}
}

// TestDrawZeroPicksFirstPositive tests that r=0 never selects a zero-mass value
func TestDrawZeroPicksFirstPositive(t *testing.T) {
	net := catalog.Race()
	s := sampling.NewSampler(net, sampling.NewSequenceSource(0.0))

	a, err := s.Draw(network.Evidence{"Course": "short", "Weather": "nice"})
	require.NoError(t, err)
	// P(slow | short, nice) = 0
	assert.Equal(t, "medium", a["HarePerf"])
}

// TestDrawDeterministic tests that a recorded sequence reproduces the same draws
func TestDrawDeterministic(t *testing.T) {
	net := catalog.Race()
	seq := []float64{0.12, 0.87, 0.45, 0.33, 0.99, 0.01, 0.5, 0.76}

	first := sampling.NewSampler(net, sampling.NewSequenceSource(seq...))
	second := sampling.NewSampler(net, sampling.NewSequenceSource(seq...))
	for i := 0; i < 20; i++ {
		a, err := first.Draw(nil)
		require.NoError(t, err)
		b, err := second.Draw(nil)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}

	seeded1 := sampling.NewSampler(net, sampling.NewSource(7))
	seeded2 := sampling.NewSampler(net, sampling.NewSource(7))
	for i := 0; i < 20; i++ {
		a, _ := seeded1.Draw(nil)
		b, _ := seeded2.Draw(nil)
		assert.Equal(t, a, b)
	}
}

// TestDrawKnownSequence tests a hand-computed draw
func TestDrawKnownSequence(t *testing.T) {
	net := catalog.Race()
	// Weather 0.35 -> hot, Course 0.6 -> short, HarePerf 0.05 -> slow,
	// TortoisePerf 0.95 -> fast, HareWins (slow, fast) 0.5 -> lose.
	s := sampling.NewSampler(net, sampling.NewSequenceSource(0.35, 0.6, 0.05, 0.95, 0.5))

	a, err := s.Draw(nil)
	require.NoError(t, err)
	assert.Equal(t, network.Assignment{
		"Weather":      "hot",
		"Course":       "short",
		"HarePerf":     "slow",
		"TortoisePerf": "fast",
		"HareWins":     "lose",
	}, a)
}

// TestDrawPinsEvidence tests that evidence is kept and consumes no draws
func TestDrawPinsEvidence(t *testing.T) {
	net := twoVar(t)
	stats := &sampling.Stats{}
	s := sampling.NewSampler(net, sampling.NewSequenceSource(0.9), sampling.WithStats(stats))

	a, err := s.Draw(network.Evidence{"R": "a"})
	require.NoError(t, err)
	assert.Equal(t, network.Assignment{"R": "a", "C": "x"}, a)

	snap := stats.Snapshot()
	assert.Equal(t, int64(1), snap.Draws)
	assert.Equal(t, int64(1), snap.Pinned)
	assert.Same(t, stats, s.Stats())
	assert.Same(t, net, s.Network())
}

// TestDrawInvalidEvidence tests that evidence outside the network is rejected
func TestDrawInvalidEvidence(t *testing.T) {
	s := sampling.NewSampler(twoVar(t), sampling.NewSource(1))

	_, err := s.Draw(network.Evidence{"Q": "a"})
	assert.ErrorIs(t, err, network.ErrUnknownVariable)

	_, err = s.Draw(network.Evidence{"R": "z"})
	assert.ErrorIs(t, err, network.ErrUnknownValue)
}

// TestDrawResidualMass tests the fallback for draws above a row's total mass
func TestDrawResidualMass(t *testing.T) {
	net, err := network.New(network.Definition{
		Name: "short",
		Variables: []network.VariableDef{{
			Name:   "A",
			Domain: []string{"p", "q", "r"},
			Table:  []network.RowDef{{Probs: map[string]float64{"p": 0.5, "q": 0.4999999999}}},
		}},
	})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	stats := &sampling.Stats{}
	s := sampling.NewSampler(net, sampling.NewSequenceSource(0.99999999995), sampling.WithStats(stats), sampling.WithLogger(logger))

	a, err := s.Draw(nil)
	require.NoError(t, err)
	assert.Equal(t, "q", a["A"])
	assert.Equal(t, int64(1), stats.Snapshot().ResidualFallbacks)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "A", entry.Data["variable"])
}
