/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the sampler commands. Provides configuration loading,
logging setup, network and engine construction, evidence parsing and result output used
across all command implementations.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kleascm/bayesnet-sampler/pkg/catalog"
	"github.com/kleascm/bayesnet-sampler/pkg/logging"
	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/kleascm/bayesnet-sampler/pkg/sampling"
	"github.com/kleascm/bayesnet-sampler/pkg/utils"
	"github.com/spf13/viper"
)

// Output formats for query results
const (
	OutputText = "text"
	OutputJSON = "json"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("BAYES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	switch output := viper.GetString("output"); output {
	case "", OutputText, OutputJSON:
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
	return nil
}

// SetupLogging builds the logger from configuration
func SetupLogging() (*logging.Logger, error) {
	config := logging.DefaultConfig()
	if level := viper.GetString("log_level"); level != "" {
		config.Level = logging.LogLevel(level)
	}
	if format := viper.GetString("log_format"); format != "" {
		config.Format = logging.LogFormat(format)
	}
	config.OutputDir = viper.GetString("log_dir")
	if maxFiles := viper.GetInt("log_max_files"); maxFiles > 0 {
		config.MaxFiles = maxFiles
	}
	config.Caller = viper.GetBool("log_caller")

	return logging.NewLogger(config)
}

// LoadNetwork loads the configured network file, or the configured built-in
// network when no file is given. It returns the network and where it came from.
func LoadNetwork() (*network.Network, string, error) {
	if path := viper.GetString("network"); path != "" {
		net, err := network.Load(path)
		if err != nil {
			return nil, "", err
		}
		return net, path, nil
	}

	name := viper.GetString("builtin")
	if name == "" {
		name = catalog.Default
	}
	net, err := catalog.Load(name)
	if err != nil {
		return nil, "", err
	}
	return net, "builtin:" + name, nil
}

// EngineConfig builds the engine configuration from viper
func EngineConfig() *sampling.EngineConfig {
	return &sampling.EngineConfig{
		Workers: viper.GetInt("workers"),
		Seed:    viper.GetInt64("seed"),
	}
}

// session bundles what every query command needs
type session struct {
	logger    *logging.Logger
	net       *network.Network
	source    string
	engine    *sampling.Engine
	collector *sampling.CollectingReporter
}

// sessionMetrics is the JSON shape written to the metrics directory
type sessionMetrics struct {
	Network string                 `json:"network"`
	Source  string                 `json:"source"`
	Engine  sampling.EngineConfig  `json:"engine"`
	Stats   sampling.StatsSnapshot `json:"stats"`
	Runs    []sampling.RunSummary  `json:"runs"`
}

// openSession loads config, logging, the network from load and the engine
func openSession(load func() (*network.Network, string, error)) (*session, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	net, source, err := load()
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to load network: %w", err)
	}
	logger.LogNetwork(net.Name(), net.Len(), source)

	engine, err := sampling.NewEngine(net, EngineConfig(), logger.GetLogger())
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	engine.AddReporter(sampling.NewLoggerReporter(logger.GetLogger()))

	s := &session{logger: logger, net: net, source: source, engine: engine}
	if viper.GetString("metrics_dir") != "" {
		s.collector = sampling.NewCollectingReporter()
		engine.AddReporter(s.collector)
	}
	return s, nil
}

// close logs final statistics, writes session metrics when configured and
// closes the logger
func (s *session) close() {
	stats := s.engine.Stats()
	s.logger.LogStats(stats.Draws, stats.ResidualFallbacks, stats.Accepted, stats.Rejected)

	if s.collector != nil {
		path, err := utils.WriteMetricsResult(viper.GetString("metrics_dir"), s.net.Name(), sessionMetrics{
			Network: s.net.Name(),
			Source:  s.source,
			Engine:  s.engine.Config(),
			Stats:   stats,
			Runs:    s.collector.Summaries(),
		})
		if err != nil {
			s.logger.GetLogger().WithError(err).Warn("Failed to write session metrics")
		} else {
			s.logger.GetLogger().WithField("path", path).Info("Session metrics written")
		}
	}
	s.logger.Close()
}

// ParsePairs parses name=value pairs into evidence
func ParsePairs(pairs []string) (network.Evidence, error) {
	evidence := make(network.Evidence, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("invalid pair %q, want name=value", pair)
		}
		if prev, dup := evidence[name]; dup && prev != value {
			return nil, fmt.Errorf("conflicting values for %q: %q and %q", name, prev, value)
		}
		evidence[name] = value
	}
	return evidence, nil
}

// formatPairs renders evidence as sorted name=value pairs
func formatPairs(e network.Evidence) string {
	if len(e) == 0 {
		return "none"
	}
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + e[name]
	}
	return strings.Join(parts, ", ")
}

// outputJSON reports whether results should be printed as JSON
func outputJSON() bool {
	return viper.GetString("output") == OutputJSON
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeDistribution prints a distribution as an aligned table
func writeDistribution(w io.Writer, variable string, dist network.Distribution) {
	width := len(variable)
	for _, o := range dist {
		if len(o.Value) > width {
			width = len(o.Value)
		}
	}
	for _, o := range dist {
		fmt.Fprintf(w, "  %-*s  %.4f\n", width, o.Value, o.P)
	}
}
