package main

import (
	"encoding/json"
	"fmt"

	"tools.zach/dev/sigrace/internal/atomicfile"
)

// ///////////////////////////////////////////////
// Run Report
// ///////////////////////////////////////////////

// stepResult records the outcome of one executed step for the run report.
type stepResult struct {
	Name        string `json:"name"`
	Summary     string `json:"summary,omitempty"`
	Error       string `json:"error,omitempty"`
	Interrupted bool   `json:"interrupted,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// writeReport atomically writes the run report as indented JSON so a crash
// mid-write never leaves a truncated report behind.
func writeReport(path string, results []stepResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := atomicfile.Write(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
