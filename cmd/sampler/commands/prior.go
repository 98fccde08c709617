/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: prior.go
Description: Prior command. Estimates the probability of a target outcome by prior sampling
with evidence fixed at generation time.
*/

package commands

import (
	"errors"
	"fmt"

	"github.com/kleascm/bayesnet-sampler/pkg/sampling"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// priorResult is the JSON shape of a prior query
type priorResult struct {
	Network  string            `json:"network"`
	Evidence map[string]string `json:"evidence"`
	Target   map[string]string `json:"target"`
	Estimate sampling.Estimate `json:"estimate"`
	Ratio    *float64          `json:"ratio"` // null when there is no data
}

// RunPrior executes a prior-sampling query
func RunPrior(cmd *cobra.Command, args []string) error {
	s, err := openSession(LoadNetwork)
	if err != nil {
		return err
	}
	defer s.close()

	evidence, err := ParsePairs(viper.GetStringSlice("prior.evidence"))
	if err != nil {
		return fmt.Errorf("invalid evidence: %w", err)
	}
	target, err := ParsePairs(viper.GetStringSlice("prior.target"))
	if err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	if len(target) == 0 {
		return fmt.Errorf("at least one --target pair is required")
	}
	if err := s.net.CheckEvidence(target); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	samples := viper.GetInt("samples")
	s.logger.LogQuery(string(sampling.RunPrior), samples, map[string]interface{}{
		"evidence": formatPairs(evidence),
		"target":   formatPairs(target),
	})

	est, err := s.engine.PriorEstimate(cmd.Context(), samples, evidence, sampling.MatchesAll(target))
	if err != nil {
		return fmt.Errorf("prior estimate failed: %w", err)
	}

	out := cmd.OutOrStdout()
	ratio, ratioErr := est.Ratio()
	if outputJSON() {
		res := priorResult{Network: s.net.Name(), Evidence: evidence, Target: target, Estimate: est}
		if ratioErr == nil {
			res.Ratio = &ratio
		}
		return writeJSON(out, res)
	}

	fmt.Fprintf(out, "P(%s | %s)\n", formatPairs(target), formatPairs(evidence))
	if errors.Is(ratioErr, sampling.ErrNoData) {
		fmt.Fprintf(out, "  no data: %d hits in %d samples\n", est.Hits, est.Samples)
		return nil
	}
	fmt.Fprintf(out, "  %.4f (%d/%d)\n", ratio, est.Hits, est.Samples)
	return nil
}
