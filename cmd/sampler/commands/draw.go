/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: draw.go
Description: Draw command. Prints a few complete joint assignments drawn from the network,
optionally with evidence pinned.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunDraw prints sampled joint assignments
func RunDraw(cmd *cobra.Command, args []string) error {
	s, err := openSession(LoadNetwork)
	if err != nil {
		return err
	}
	defer s.close()

	evidence, err := ParsePairs(viper.GetStringSlice("draw.evidence"))
	if err != nil {
		return fmt.Errorf("invalid evidence: %w", err)
	}

	count := viper.GetInt("draw.count")
	if count < 0 {
		return fmt.Errorf("count must not be negative, got %d", count)
	}

	draws := make([]network.Assignment, 0, count)
	for i := 0; i < count; i++ {
		a, err := s.engine.Draw(evidence)
		if err != nil {
			return fmt.Errorf("draw failed: %w", err)
		}
		draws = append(draws, a)
	}

	out := cmd.OutOrStdout()
	if outputJSON() {
		return writeJSON(out, draws)
	}
	for _, a := range draws {
		fmt.Fprintln(out, a.String(s.net.Order()...))
	}
	return nil
}
