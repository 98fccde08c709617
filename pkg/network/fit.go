/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fit.go
Description: Maximum-likelihood CPT estimation from complete observations. Counts how often
each value occurs per parent-value combination, with optional additive smoothing, and
returns a validated network with the fitted tables.
*/

package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// FitOptions controls CPT fitting.
type FitOptions struct {
	// Smoothing is the pseudo-count added to every cell (0 = plain frequencies).
	Smoothing float64
}

// Fit estimates the CPTs of structure from observations. The tables in
// structure are ignored; names, domains and parents are kept. Every
// observation must assign every variable.
func Fit(structure Definition, observations []Assignment, opts FitOptions) (*Network, error) {
	if opts.Smoothing < 0 {
		return nil, fmt.Errorf("smoothing must not be negative, got %v", opts.Smoothing)
	}

	n, err := skeleton(structure)
	if err != nil {
		return nil, err
	}

	counts := make([][][]float64, len(n.vars))
	for i, v := range n.vars {
		counts[i] = make([][]float64, v.RowCount())
		for r := range counts[i] {
			counts[i][r] = make([]float64, len(v.domain))
		}
	}

	for obsIdx, obs := range observations {
		for i, v := range n.vars {
			value, ok := obs[v.name]
			if !ok {
				return nil, fmt.Errorf("observation %d: %w: %q", obsIdx, ErrMissingParentValue, v.name)
			}
			vi, ok := v.values[value]
			if !ok {
				return nil, fmt.Errorf("observation %d: %w: %q for %q", obsIdx, ErrUnknownValue, value, v.name)
			}
			given := make([]string, len(v.parents))
			for j, p := range v.parents {
				given[j] = obs[p.name]
			}
			row, err := v.rowIndex(given)
			if err != nil {
				return nil, fmt.Errorf("observation %d: %w", obsIdx, err)
			}
			counts[i][row][vi]++
		}
	}

	def := Definition{Name: structure.Name, Variables: make([]VariableDef, len(n.vars))}
	for i, v := range n.vars {
		vd := VariableDef{
			Name:    v.name,
			Domain:  v.Domain(),
			Parents: v.Parents(),
			Table:   make([]RowDef, len(counts[i])),
		}
		for r, cells := range counts[i] {
			total := 0.0
			for _, c := range cells {
				total += c + opts.Smoothing
			}
			given := v.given(r)
			if total == 0 {
				return nil, fmt.Errorf("%w: %q given %v", ErrNoObservations, v.name, given)
			}
			probs := make(map[string]float64, len(cells))
			for vi, c := range cells {
				probs[v.domain[vi]] = (c + opts.Smoothing) / total
			}
			rd := RowDef{Probs: probs}
			if len(v.parents) > 0 {
				rd.Given = given
			}
			vd.Table[r] = rd
		}
		def.Variables[i] = vd
	}

	return New(def)
}

// ReadObservations reads complete observations from CSV. The first record is
// a header of variable names; each following record is one observation.
func ReadObservations(r io.Reader) ([]Assignment, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	observations := make([]Assignment, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", line+2, len(rec), len(header))
		}
		obs := make(Assignment, len(header))
		for i, name := range header {
			obs[name] = strings.TrimSpace(rec[i])
		}
		observations = append(observations, obs)
	}
	return observations, nil
}
