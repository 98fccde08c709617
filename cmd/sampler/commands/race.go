/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: race.go
Description: Race command. Answers the three standard questions about the built-in hare and
tortoise network: how likely the hare is to win, how likely it is to win in cold wet
weather, and the weather distribution given the tortoise won on the short course.
*/

package commands

import (
	"errors"
	"fmt"

	"github.com/kleascm/bayesnet-sampler/pkg/catalog"
	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/kleascm/bayesnet-sampler/pkg/sampling"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// raceReport is the JSON shape of the race queries
type raceReport struct {
	HareWins         *float64             `json:"hare_wins"`
	HareWinsColdWet  *float64             `json:"hare_wins_cold_wet"`
	WeatherGivenLoss network.Distribution `json:"weather_given_tortoise_short"`
	Survivors        int                  `json:"survivors"`
}

func raceNetwork() (*network.Network, string, error) {
	net, err := catalog.Load("race")
	if err != nil {
		return nil, "", err
	}
	return net, "builtin:race", nil
}

// RunRace answers the standard race queries
func RunRace(cmd *cobra.Command, args []string) error {
	s, err := openSession(raceNetwork)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	samples := viper.GetInt("samples")
	hareWins := sampling.Equals("HareWins", "win")

	overall, err := s.engine.PriorEstimate(ctx, samples, nil, hareWins)
	if err != nil {
		return fmt.Errorf("query 1 failed: %w", err)
	}
	coldWet, err := s.engine.PriorEstimate(ctx, samples, network.Evidence{"Weather": "coldWet"}, hareWins)
	if err != nil {
		return fmt.Errorf("query 2 failed: %w", err)
	}
	filter := network.Evidence{"Course": "short", "HareWins": "lose"}
	rejection, err := s.engine.RejectionSample(ctx, samples, filter)
	if err != nil {
		return fmt.Errorf("query 3 failed: %w", err)
	}
	weather, weatherErr := rejection.Distribution("Weather")
	if weatherErr != nil && !errors.Is(weatherErr, sampling.ErrInsufficientSamples) {
		return weatherErr
	}

	out := cmd.OutOrStdout()
	if outputJSON() {
		return writeJSON(out, raceReport{
			HareWins:         ratioOrNil(overall),
			HareWinsColdWet:  ratioOrNil(coldWet),
			WeatherGivenLoss: weather,
			Survivors:        rejection.Accepted(),
		})
	}

	fmt.Fprintln(out, "1. In general, how likely is the hare to win?")
	fmt.Fprintf(out, "   %s\n", overall)
	fmt.Fprintln(out, "2. Given that it is coldWet, how likely is the hare to win?")
	fmt.Fprintf(out, "   %s\n", coldWet)
	fmt.Fprintln(out, "3. Given that the tortoise won on the short course, what is the weather distribution?")
	if weatherErr != nil {
		fmt.Fprintln(out, "   insufficient samples")
		return nil
	}
	fmt.Fprintf(out, "   %d survivors\n", rejection.Accepted())
	writeDistribution(out, "Weather", weather)
	return nil
}

func ratioOrNil(est sampling.Estimate) *float64 {
	ratio, err := est.Ratio()
	if err != nil {
		return nil
	}
	return &ratio
}
