/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: codec.go
Description: YAML loading and encoding of network definitions. Networks are read once at
startup, validated immediately, and never edited afterwards.
*/

package network

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML network definition and builds the network.
// Unknown keys are rejected so that typos do not silently drop data.
func Parse(data []byte) (*Network, error) {
	def, err := DecodeDefinition(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return New(def)
}

// Load reads and parses the network definition at path.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}
	n, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// DecodeDefinition decodes a YAML definition without building the network.
func DecodeDefinition(r io.Reader) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("%w: failed to decode definition: %w", ErrInvalidNetwork, err)
	}
	return def, nil
}

// EncodeDefinition writes def as YAML.
func EncodeDefinition(w io.Writer, def Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return fmt.Errorf("failed to encode definition: %w", err)
	}
	return enc.Close()
}
