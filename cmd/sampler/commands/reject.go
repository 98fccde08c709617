/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reject.go
Description: Reject command. Draws unconditional samples, keeps those consistent with the
filter, and reports the survivors and optionally the conditional distribution of a query
variable over them.
*/

package commands

import (
	"errors"
	"fmt"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/kleascm/bayesnet-sampler/pkg/sampling"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rejectResult is the JSON shape of a rejection query
type rejectResult struct {
	Network      string               `json:"network"`
	RunID        string               `json:"run_id"`
	Filter       map[string]string    `json:"filter"`
	Drawn        int                  `json:"drawn"`
	Accepted     int                  `json:"accepted"`
	Query        string               `json:"query,omitempty"`
	Distribution network.Distribution `json:"distribution,omitempty"`
	Survivors    []network.Assignment `json:"survivors,omitempty"`
}

// RunReject executes a rejection-sampling query
func RunReject(cmd *cobra.Command, args []string) error {
	s, err := openSession(LoadNetwork)
	if err != nil {
		return err
	}
	defer s.close()

	filter, err := ParsePairs(viper.GetStringSlice("reject.filter"))
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	query := viper.GetString("reject.query")
	if query != "" {
		if _, err := s.net.Variable(query); err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}
	}

	samples := viper.GetInt("samples")
	s.logger.LogQuery(string(sampling.RunRejection), samples, map[string]interface{}{
		"filter": formatPairs(filter),
		"query":  query,
	})

	res, err := s.engine.RejectionSample(cmd.Context(), samples, filter)
	if err != nil {
		return fmt.Errorf("rejection sampling failed: %w", err)
	}

	var dist network.Distribution
	var distErr error
	if query != "" {
		dist, distErr = res.Distribution(query)
		if distErr != nil && !errors.Is(distErr, sampling.ErrInsufficientSamples) {
			return distErr
		}
	}

	limit := viper.GetInt("reject.show")
	shown := res.Survivors
	if limit >= 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	out := cmd.OutOrStdout()
	if outputJSON() {
		return writeJSON(out, rejectResult{
			Network:      s.net.Name(),
			RunID:        res.RunID,
			Filter:       filter,
			Drawn:        res.Drawn,
			Accepted:     res.Accepted(),
			Query:        query,
			Distribution: dist,
			Survivors:    shown,
		})
	}

	fmt.Fprintf(out, "Filter: %s\n", formatPairs(filter))
	fmt.Fprintf(out, "Accepted %d of %d samples (%.2f%%)\n", res.Accepted(), res.Drawn, 100*res.AcceptanceRate())
	for _, a := range shown {
		fmt.Fprintf(out, "  %s\n", a.String(s.net.Order()...))
	}
	if query == "" {
		return nil
	}
	if distErr != nil {
		fmt.Fprintf(out, "P(%s | %s): insufficient samples\n", query, formatPairs(filter))
		return nil
	}
	fmt.Fprintf(out, "P(%s | %s)\n", query, formatPairs(filter))
	writeDistribution(out, query, dist)
	return nil
}
