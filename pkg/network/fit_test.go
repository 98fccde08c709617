/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fit_test.go
Description: Tests for CPT fitting from observations and CSV observation parsing.
*/

package network_test

import (
	"strings"
	"testing"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structure() network.Definition {
	def := twoVar()
	for i := range def.Variables {
		def.Variables[i].Table = nil
	}
	return def
}

func observations(pairs ...string) []network.Assignment {
	out := make([]network.Assignment, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, network.Assignment{"R": p[:1], "C": p[1:]})
	}
	return out
}

// TestFitFrequencies tests plain maximum-likelihood estimates
func TestFitFrequencies(t *testing.T) {
	net, err := network.Fit(structure(), observations("ax", "ax", "ay", "by"), network.FitOptions{})
	require.NoError(t, err)

	r, err := net.Row("R")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, r.Prob("a"), 1e-12)

	c, err := net.Row("C", "a")
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, c.Prob("x"), 1e-12)

	c, err = net.Row("C", "b")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Prob("y"))
}

// TestFitSmoothing tests additive smoothing
func TestFitSmoothing(t *testing.T) {
	net, err := network.Fit(structure(), observations("ax", "ax", "ax"), network.FitOptions{Smoothing: 1})
	require.NoError(t, err)

	r, err := net.Row("R")
	require.NoError(t, err)
	assert.InDelta(t, 4.0/5.0, r.Prob("a"), 1e-12)

	// Unobserved parent values fall back to uniform.
	c, err := net.Row("C", "b")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c.Prob("x"), 1e-12)
}

// TestFitErrors tests fitting failures
func TestFitErrors(t *testing.T) {
	_, err := network.Fit(structure(), observations("ax", "ay"), network.FitOptions{})
	assert.ErrorIs(t, err, network.ErrNoObservations)

	_, err = network.Fit(structure(), []network.Assignment{{"R": "a"}}, network.FitOptions{Smoothing: 1})
	assert.ErrorIs(t, err, network.ErrMissingParentValue)

	_, err = network.Fit(structure(), []network.Assignment{{"R": "a", "C": "z"}}, network.FitOptions{Smoothing: 1})
	assert.ErrorIs(t, err, network.ErrUnknownValue)

	_, err = network.Fit(structure(), nil, network.FitOptions{Smoothing: -1})
	assert.Error(t, err)
}

// TestReadObservations tests CSV parsing
func TestReadObservations(t *testing.T) {
	obs, err := network.ReadObservations(strings.NewReader("R, C\na, x\nb,y\n"))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, network.Assignment{"R": "a", "C": "x"}, obs[0])
	assert.Equal(t, network.Assignment{"R": "b", "C": "y"}, obs[1])

	_, err = network.ReadObservations(strings.NewReader(""))
	assert.Error(t, err)

	_, err = network.ReadObservations(strings.NewReader("R,C\na\n"))
	assert.Error(t, err)
}

// TestFitFromCSV tests the full path from CSV to a fitted network
func TestFitFromCSV(t *testing.T) {
	obs, err := network.ReadObservations(strings.NewReader("C,R\nx,a\ny,b\ny,a\ny,b\n"))
	require.NoError(t, err)

	net, err := network.Fit(structure(), obs, network.FitOptions{})
	require.NoError(t, err)

	r, err := net.Row("R")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, r.Prob("a"), 1e-12)
}
