/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Utility for writing sampling session metrics to a metrics directory.
Handles timestamped, network-specific subdirectory naming.
Ensures directories exist and writes JSON files for later comparison of runs.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteMetricsResult writes result as JSON under dir/<network>/ and returns the file path.
// Files are named <timestamp>_<network>.json.
func WriteMetricsResult(dir string, network string, result interface{}) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("metrics directory is required")
	}
	if network == "" {
		network = "unnamed"
	}

	metricsDir := filepath.Join(dir, network)
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	// e.g. 2024-06-11_01-30-00.123_race.json
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filePath := filepath.Join(metricsDir, fmt.Sprintf("%s_%s.json", timestamp, network))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}

	return filePath, nil
}
