/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: network.go
Description: Immutable Bayesian network and CPT store. Builds a validated network from a
Definition (fail-fast on malformed tables or broken topological order) and serves
distribution lookups for a variable given the values of its parents.
*/

package network

import (
	"fmt"
	"math"
	"strings"
)

// Variable is a node of the network with its domain, parents and CPT rows.
// Rows are indexed by a mixed-radix index over the parents' value indices.
type Variable struct {
	name    string
	domain  []string
	values  map[string]int
	parents []*Variable
	strides []int
	rows    []Distribution
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Domain returns a copy of the variable's domain in declaration order.
func (v *Variable) Domain() []string {
	out := make([]string, len(v.domain))
	copy(out, v.domain)
	return out
}

// Parents returns the parent names in declaration order.
func (v *Variable) Parents() []string {
	out := make([]string, len(v.parents))
	for i, p := range v.parents {
		out[i] = p.name
	}
	return out
}

// HasValue reports whether value belongs to the domain.
func (v *Variable) HasValue(value string) bool {
	_, ok := v.values[value]
	return ok
}

// RowCount returns the number of parent-value combinations (1 for roots).
func (v *Variable) RowCount() int {
	count := 1
	for _, p := range v.parents {
		count *= len(p.domain)
	}
	return count
}

// given returns the parent values for row index idx.
func (v *Variable) given(idx int) []string {
	out := make([]string, len(v.parents))
	for i, p := range v.parents {
		out[i] = p.domain[(idx/v.strides[i])%len(p.domain)]
	}
	return out
}

// rowIndex computes the row index for parent values in parent order.
func (v *Variable) rowIndex(given []string) (int, error) {
	if len(given) != len(v.parents) {
		return 0, fmt.Errorf("variable %q expects %d parent values, got %d", v.name, len(v.parents), len(given))
	}
	idx := 0
	for i, p := range v.parents {
		vi, ok := p.values[given[i]]
		if !ok {
			return 0, fmt.Errorf("%w: %q for parent %q of %q", ErrUnknownValue, given[i], p.name, v.name)
		}
		idx += vi * v.strides[i]
	}
	return idx, nil
}

// Network is an immutable discrete Bayesian network. It is safe for
// concurrent use once constructed.
type Network struct {
	name   string
	vars   []*Variable
	byName map[string]*Variable
}

// New validates def and builds a network from it. Variables must be listed in
// topological order. Any inconsistency is reported as ErrInvalidNetwork.
func New(def Definition) (*Network, error) {
	n, err := skeleton(def)
	if err != nil {
		return nil, err
	}
	for i, vd := range def.Variables {
		if err := n.vars[i].fill(vd.Table); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// MustNew is like New but panics on error. Intended for built-in networks.
func MustNew(def Definition) *Network {
	n, err := New(def)
	if err != nil {
		panic(err)
	}
	return n
}

// skeleton validates names, domains and the parent structure and returns a
// network whose variables have no CPT rows yet.
func skeleton(def Definition) (*Network, error) {
	if len(def.Variables) == 0 {
		return nil, fmt.Errorf("%w: no variables", ErrInvalidNetwork)
	}

	n := &Network{
		name:   def.Name,
		vars:   make([]*Variable, 0, len(def.Variables)),
		byName: make(map[string]*Variable, len(def.Variables)),
	}

	for _, vd := range def.Variables {
		name := vd.Name
		if name == "" {
			return nil, fmt.Errorf("%w: variable with empty name", ErrInvalidNetwork)
		}
		if strings.TrimSpace(name) != name {
			return nil, fmt.Errorf("%w: variable %q has surrounding whitespace", ErrInvalidNetwork, name)
		}
		if _, dup := n.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrInvalidNetwork, name)
		}
		if len(vd.Domain) == 0 {
			return nil, fmt.Errorf("%w: variable %q has an empty domain", ErrInvalidNetwork, name)
		}

		v := &Variable{
			name:   name,
			domain: make([]string, len(vd.Domain)),
			values: make(map[string]int, len(vd.Domain)),
		}
		for i, value := range vd.Domain {
			if value == "" {
				return nil, fmt.Errorf("%w: variable %q has an empty domain value", ErrInvalidNetwork, name)
			}
			if strings.TrimSpace(value) != value {
				return nil, fmt.Errorf("%w: variable %q has domain value %q with surrounding whitespace", ErrInvalidNetwork, name, value)
			}
			if _, dup := v.values[value]; dup {
				return nil, fmt.Errorf("%w: variable %q repeats domain value %q", ErrInvalidNetwork, name, value)
			}
			v.domain[i] = value
			v.values[value] = i
		}

		seen := make(map[string]bool, len(vd.Parents))
		for _, pname := range vd.Parents {
			if pname == name {
				return nil, fmt.Errorf("%w: variable %q lists itself as a parent", ErrInvalidNetwork, name)
			}
			if seen[pname] {
				return nil, fmt.Errorf("%w: variable %q repeats parent %q", ErrInvalidNetwork, name, pname)
			}
			seen[pname] = true
			parent, ok := n.byName[pname]
			if !ok {
				return nil, fmt.Errorf("%w: parent %q of %q is not declared before it", ErrInvalidNetwork, pname, name)
			}
			v.parents = append(v.parents, parent)
		}

		// Last parent varies fastest.
		v.strides = make([]int, len(v.parents))
		stride := 1
		for i := len(v.parents) - 1; i >= 0; i-- {
			v.strides[i] = stride
			stride *= len(v.parents[i].domain)
		}

		n.vars = append(n.vars, v)
		n.byName[name] = v
	}

	return n, nil
}

// fill validates the CPT rows of v and stores them by row index.
func (v *Variable) fill(table []RowDef) error {
	count := v.RowCount()
	if len(table) != count {
		return fmt.Errorf("%w: variable %q needs %d CPT rows, got %d", ErrInvalidNetwork, v.name, count, len(table))
	}

	v.rows = make([]Distribution, count)
	for _, row := range table {
		idx, err := v.rowIndex(row.Given)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
		}
		if v.rows[idx] != nil {
			return fmt.Errorf("%w: variable %q has duplicate row for %v", ErrInvalidNetwork, v.name, row.Given)
		}
		dist, err := v.distribution(row.Probs)
		if err != nil {
			return fmt.Errorf("%w: variable %q row %v: %w", ErrInvalidNetwork, v.name, row.Given, err)
		}
		v.rows[idx] = dist
	}

	// Row count matched and duplicates were rejected, so every slot is filled.
	return nil
}

// distribution converts a probs map into a Distribution in domain order.
func (v *Variable) distribution(probs map[string]float64) (Distribution, error) {
	for value := range probs {
		if _, ok := v.values[value]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownValue, value)
		}
	}

	dist := make(Distribution, len(v.domain))
	for i, value := range v.domain {
		p := probs[value]
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("probability %v for %q is outside [0,1]", p, value)
		}
		dist[i] = Outcome{Value: value, P: p}
	}
	if sum := dist.Sum(); math.Abs(sum-1.0) > Tolerance {
		return nil, fmt.Errorf("probabilities sum to %v, want 1", sum)
	}
	return dist, nil
}

// Name returns the network name.
func (n *Network) Name() string { return n.name }

// Len returns the number of variables.
func (n *Network) Len() int { return len(n.vars) }

// Order returns the variable names in topological order.
func (n *Network) Order() []string {
	out := make([]string, len(n.vars))
	for i, v := range n.vars {
		out[i] = v.name
	}
	return out
}

// Variable returns the named variable.
func (n *Network) Variable(name string) (*Variable, error) {
	v, ok := n.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return v, nil
}

// Lookup returns the distribution of variable given the already resolved
// values in partial. Only the variable's parents are read from partial.
func (n *Network) Lookup(variable string, partial Assignment) (Distribution, error) {
	v, ok := n.byName[variable]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}

	idx := 0
	for i, p := range v.parents {
		value, ok := partial[p.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q needs %q", ErrMissingParentValue, variable, p.name)
		}
		vi, ok := p.values[value]
		if !ok {
			return nil, fmt.Errorf("%w: %q for parent %q of %q", ErrUnknownValue, value, p.name, variable)
		}
		idx += vi * v.strides[i]
	}

	row := v.rows[idx]
	out := make(Distribution, len(row))
	copy(out, row)
	return out, nil
}

// Row returns the CPT row of variable for the given parent values, in parent order.
func (n *Network) Row(variable string, given ...string) (Distribution, error) {
	v, ok := n.byName[variable]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}
	idx, err := v.rowIndex(given)
	if err != nil {
		return nil, err
	}
	out := make(Distribution, len(v.rows[idx]))
	copy(out, v.rows[idx])
	return out, nil
}

// CheckEvidence verifies that every evidence pair names a known variable and
// a value from its domain.
func (n *Network) CheckEvidence(e Evidence) error {
	for name, value := range e {
		v, ok := n.byName[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		if !v.HasValue(value) {
			return fmt.Errorf("%w: %q for %q", ErrUnknownValue, value, name)
		}
	}
	return nil
}

// Definition returns the serializable form of the network.
func (n *Network) Definition() Definition {
	def := Definition{Name: n.name, Variables: make([]VariableDef, len(n.vars))}
	for i, v := range n.vars {
		vd := VariableDef{
			Name:    v.name,
			Domain:  v.Domain(),
			Parents: v.Parents(),
			Table:   make([]RowDef, len(v.rows)),
		}
		for idx, row := range v.rows {
			probs := make(map[string]float64, len(row))
			for _, o := range row {
				probs[o.Value] = o.P
			}
			rd := RowDef{Probs: probs}
			if len(v.parents) > 0 {
				rd.Given = v.given(idx)
			}
			vd.Table[idx] = rd
		}
		def.Variables[i] = vd
	}
	return def
}
