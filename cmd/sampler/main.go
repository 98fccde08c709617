/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Bayesian network sampler. Wires the
query, inspection and fitting commands together with configuration management and
logging options.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/bayesnet-sampler/cmd/sampler/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "bayesnet-sampler",
		Short: "Approximate inference over discrete Bayesian networks",
		Long: `bayesnet-sampler answers probability queries over discrete Bayesian networks
by forward sampling. Prior estimates fix evidence while samples are generated;
rejection estimates draw unconditionally and keep only samples matching a filter.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Configuration and logging flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "warn", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty = console only)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Bool("log-caller", false, "Include caller location in log lines")
	rootCmd.PersistentFlags().String("metrics-dir", "", "Directory for per-session JSON metrics (empty = disabled)")

	// Network and engine flags
	rootCmd.PersistentFlags().String("network", "", "Path to a YAML network definition")
	rootCmd.PersistentFlags().String("builtin", "", "Built-in network to use when --network is empty")
	rootCmd.PersistentFlags().Int64("seed", 0, "Random seed (0 = time based)")
	rootCmd.PersistentFlags().Int("workers", 0, "Number of parallel workers (0 = auto-detect)")
	rootCmd.PersistentFlags().Int("samples", 10000, "Number of samples per query")
	rootCmd.PersistentFlags().String("output", commands.OutputText, "Result format (text, json)")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_caller", rootCmd.PersistentFlags().Lookup("log-caller"))
	viper.BindPFlag("metrics_dir", rootCmd.PersistentFlags().Lookup("metrics-dir"))
	viper.BindPFlag("network", rootCmd.PersistentFlags().Lookup("network"))
	viper.BindPFlag("builtin", rootCmd.PersistentFlags().Lookup("builtin"))
	viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("samples", rootCmd.PersistentFlags().Lookup("samples"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	// Add prior command
	priorCmd := &cobra.Command{
		Use:   "prior",
		Short: "Estimate a probability by prior sampling",
		Long: `Estimate P(target | evidence) by drawing samples with the evidence variables
fixed during generation and counting the samples that satisfy the target.`,
		RunE: commands.RunPrior,
	}
	priorCmd.Flags().StringSlice("evidence", []string{}, "Evidence pairs fixed during sampling (name=value)")
	priorCmd.Flags().StringSlice("target", []string{}, "Target pairs to count (name=value, required)")
	priorCmd.MarkFlagRequired("target")
	viper.BindPFlag("prior.evidence", priorCmd.Flags().Lookup("evidence"))
	viper.BindPFlag("prior.target", priorCmd.Flags().Lookup("target"))
	rootCmd.AddCommand(priorCmd)

	// Add reject command
	rejectCmd := &cobra.Command{
		Use:   "reject",
		Short: "Draw samples and keep those matching a filter",
		Long: `Draw unconditional samples, keep the ones consistent with the filter and
report the survivors. With --query, also report the distribution of that variable
over the survivors.`,
		RunE: commands.RunReject,
	}
	rejectCmd.Flags().StringSlice("filter", []string{}, "Filter pairs samples must match (name=value)")
	rejectCmd.Flags().String("query", "", "Variable whose distribution to report over the survivors")
	rejectCmd.Flags().Int("show", 10, "Number of survivors to print (-1 = all)")
	viper.BindPFlag("reject.filter", rejectCmd.Flags().Lookup("filter"))
	viper.BindPFlag("reject.query", rejectCmd.Flags().Lookup("query"))
	viper.BindPFlag("reject.show", rejectCmd.Flags().Lookup("show"))
	rootCmd.AddCommand(rejectCmd)

	// Add draw command
	drawCmd := &cobra.Command{
		Use:   "draw",
		Short: "Print sampled joint assignments",
		RunE:  commands.RunDraw,
	}
	drawCmd.Flags().StringSlice("evidence", []string{}, "Evidence pairs fixed during sampling (name=value)")
	drawCmd.Flags().Int("count", 5, "Number of assignments to draw")
	viper.BindPFlag("draw.evidence", drawCmd.Flags().Lookup("evidence"))
	viper.BindPFlag("draw.count", drawCmd.Flags().Lookup("count"))
	rootCmd.AddCommand(drawCmd)

	// Add check command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate a network and print its structure",
		RunE:  commands.PerformCheck,
	})

	// Add networks command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "networks",
		Short: "List the built-in networks",
		Run: func(cmd *cobra.Command, args []string) {
			commands.ListNetworks(cmd, args)
		},
	})

	// Add fit command
	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Estimate CPTs from complete observations",
		Long: `Read a network structure and a CSV of complete observations, estimate every
conditional probability table by counting, and write the fitted network as YAML.`,
		RunE: commands.PerformFit,
	}
	fitCmd.Flags().String("structure", "", "YAML network structure (tables may be omitted, required)")
	fitCmd.Flags().String("data", "", "CSV observations with a header of variable names (required)")
	fitCmd.Flags().Float64("smoothing", 1, "Additive smoothing pseudo-count per value")
	fitCmd.Flags().String("out", "", "Output file (default stdout)")
	fitCmd.MarkFlagRequired("structure")
	fitCmd.MarkFlagRequired("data")
	viper.BindPFlag("fit.structure", fitCmd.Flags().Lookup("structure"))
	viper.BindPFlag("fit.data", fitCmd.Flags().Lookup("data"))
	viper.BindPFlag("fit.smoothing", fitCmd.Flags().Lookup("smoothing"))
	viper.BindPFlag("fit.out", fitCmd.Flags().Lookup("out"))
	rootCmd.AddCommand(fitCmd)

	// Add race command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "race",
		Short: "Answer the standard hare and tortoise queries",
		Long: `Run the three standard queries against the built-in race network: the chance
the hare wins, the chance it wins in cold wet weather, and the weather distribution
given the tortoise won on the short course.`,
		RunE: commands.RunRace,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
