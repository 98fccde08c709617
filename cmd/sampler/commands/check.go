/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Check and networks commands. Loads and validates a network definition and
prints its structure, or lists the built-in networks.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/bayesnet-sampler/pkg/catalog"
	"github.com/spf13/cobra"
)

// variableSummary is the JSON shape of one checked variable
type variableSummary struct {
	Name    string   `json:"name"`
	Domain  []string `json:"domain"`
	Parents []string `json:"parents"`
	Rows    int      `json:"rows"`
}

// PerformCheck validates the configured network and prints its structure
func PerformCheck(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	net, source, err := LoadNetwork()
	if err != nil {
		return fmt.Errorf("network check failed: %w", err)
	}
	logger.LogNetwork(net.Name(), net.Len(), source)

	summaries := make([]variableSummary, 0, net.Len())
	for _, name := range net.Order() {
		v, err := net.Variable(name)
		if err != nil {
			return err
		}
		summaries = append(summaries, variableSummary{
			Name:    v.Name(),
			Domain:  v.Domain(),
			Parents: v.Parents(),
			Rows:    v.RowCount(),
		})
	}

	out := cmd.OutOrStdout()
	if outputJSON() {
		return writeJSON(out, map[string]interface{}{
			"network":   net.Name(),
			"source":    source,
			"valid":     true,
			"variables": summaries,
		})
	}

	fmt.Fprintf(out, "Network %q from %s is valid (%d variables)\n", net.Name(), source, net.Len())
	for i, v := range summaries {
		parents := "none"
		if len(v.Parents) > 0 {
			parents = strings.Join(v.Parents, ", ")
		}
		fmt.Fprintf(out, "%d. %s {%s} parents: %s rows: %d\n", i+1, v.Name, strings.Join(v.Domain, ", "), parents, v.Rows)
	}
	return nil
}

// ListNetworks prints the built-in networks
func ListNetworks(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	for _, name := range catalog.Names() {
		marker := ""
		if name == catalog.Default {
			marker = " (default)"
		}
		fmt.Fprintf(out, "%s%s\n", name, marker)
	}
}
