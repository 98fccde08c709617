/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fit.go
Description: Fit command. Estimates the CPTs of a network structure from a CSV of complete
observations and writes the fitted network as YAML.
*/

package commands

import (
	"fmt"
	"os"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PerformFit fits CPTs from observations
func PerformFit(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	structure, err := readStructure(viper.GetString("fit.structure"))
	if err != nil {
		return err
	}

	dataFile, err := os.Open(viper.GetString("fit.data"))
	if err != nil {
		return fmt.Errorf("failed to open observations: %w", err)
	}
	defer dataFile.Close()

	observations, err := network.ReadObservations(dataFile)
	if err != nil {
		return fmt.Errorf("failed to read observations: %w", err)
	}

	smoothing := viper.GetFloat64("fit.smoothing")
	net, err := network.Fit(structure, observations, network.FitOptions{Smoothing: smoothing})
	if err != nil {
		return fmt.Errorf("fit failed: %w", err)
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"network":      net.Name(),
		"observations": len(observations),
		"smoothing":    smoothing,
	}).Info("Fitted CPTs from observations")

	path := viper.GetString("fit.out")
	if path == "" {
		return network.EncodeDefinition(cmd.OutOrStdout(), net.Definition())
	}
	return writeDefinition(path, net.Definition())
}

// writeDefinition writes def as YAML to path, reporting close errors
func writeDefinition(path string, def network.Definition) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := network.EncodeDefinition(f, def); err != nil {
		f.Close()
		return fmt.Errorf("failed to write fitted network: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// readStructure decodes a network definition whose tables may be omitted
func readStructure(path string) (network.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return network.Definition{}, fmt.Errorf("failed to open structure: %w", err)
	}
	defer f.Close()
	return network.DecodeDefinition(f)
}
