/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for discrete Bayesian networks. Defines outcomes and distributions,
assignments and evidence, the serializable network definition, and the sentinel errors
shared by the CPT store, the sampler and the estimators.
*/

package network

import (
	"errors"
	"sort"
	"strings"
)

// Tolerance is the maximum deviation from 1.0 allowed for the sum of a CPT row.
const Tolerance = 1e-9

var (
	// ErrUnknownVariable is returned when a variable is not modeled by the network.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrUnknownValue is returned when a value is not part of a variable's domain.
	ErrUnknownValue = errors.New("unknown value")
	// ErrMissingParentValue is returned when a lookup is missing a parent's value.
	// This means the caller did not walk the topological order.
	ErrMissingParentValue = errors.New("missing parent value")
	// ErrInvalidNetwork wraps every failure detected while building a network.
	ErrInvalidNetwork = errors.New("invalid network")
	// ErrNoObservations is returned by Fit when a CPT row has no supporting data.
	ErrNoObservations = errors.New("no observations")
)

// Outcome is one value of a variable together with its probability.
type Outcome struct {
	Value string  `json:"value" yaml:"value"`
	P     float64 `json:"p" yaml:"p"`
}

// Distribution is a discrete distribution over a variable's domain,
// in domain declaration order.
type Distribution []Outcome

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, o := range d {
		total += o.P
	}
	return total
}

// Prob returns the probability of value, or 0 if the value is absent.
func (d Distribution) Prob(value string) float64 {
	for _, o := range d {
		if o.Value == value {
			return o.P
		}
	}
	return 0
}

// Assignment maps every variable of a network to exactly one domain value.
// Assignments returned by the sampler must be treated as read-only.
type Assignment map[string]string

// Clone returns a copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// String renders the assignment as name=value pairs in the given order.
// Variables missing from order are appended alphabetically.
func (a Assignment) String(order ...string) string {
	seen := make(map[string]bool, len(order))
	parts := make([]string, 0, len(a))
	for _, name := range order {
		if v, ok := a[name]; ok {
			parts = append(parts, name+"="+v)
			seen[name] = true
		}
	}
	var rest []string
	for name := range a {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		parts = append(parts, name+"="+a[name])
	}
	return strings.Join(parts, ", ")
}

// Evidence is a partial assignment of fixed values to some variables.
type Evidence map[string]string

// Matches reports whether the assignment agrees with every pair of the evidence.
// Empty evidence matches everything.
func (e Evidence) Matches(a Assignment) bool {
	for name, want := range e {
		if got, ok := a[name]; !ok || got != want {
			return false
		}
	}
	return true
}

// Definition is the serializable form of a network. Variables are listed in
// topological order: every parent is declared before its children.
type Definition struct {
	Name      string        `json:"name" yaml:"name"`
	Variables []VariableDef `json:"variables" yaml:"variables"`
}

// VariableDef declares one variable, its parents and its CPT.
type VariableDef struct {
	Name    string   `json:"name" yaml:"name"`
	Domain  []string `json:"domain" yaml:"domain,flow"`
	Parents []string `json:"parents,omitempty" yaml:"parents,omitempty,flow"`
	Table   []RowDef `json:"table,omitempty" yaml:"table,omitempty"`
}

// RowDef is one CPT row: the parent values it applies to (in parent order)
// and the probability of each domain value. Values omitted from Probs have
// probability zero.
type RowDef struct {
	Given []string           `json:"given,omitempty" yaml:"given,omitempty,flow"`
	Probs map[string]float64 `json:"probs" yaml:"probs,flow"`
}
