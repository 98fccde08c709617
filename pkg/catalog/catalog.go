/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: catalog.go
Description: Built-in networks shipped with the sampler. Definitions are embedded YAML files
parsed through the same validating loader as user-supplied networks.
*/

package catalog

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/kleascm/bayesnet-sampler/pkg/network"
)

//go:embed *.yaml
var files embed.FS

// Default is the network used when no network file is configured.
const Default = "race"

// Names returns the names of the built-in networks, sorted.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Load parses the built-in network called name.
func Load(name string) (*network.Network, error) {
	data, err := files.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown built-in network %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return network.Parse(data)
}

// Race returns the hare and tortoise race network.
func Race() *network.Network {
	n, err := Load("race")
	if err != nil {
		panic(err)
	}
	return n
}
