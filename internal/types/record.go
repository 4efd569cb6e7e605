// Package types provides type definitions for structured data used throughout the recipe-alpaca system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Record is a single Alpaca-style training example.
type Record struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// RunSummary reports what a pipeline run did
type RunSummary struct {
	RunID           string        `json:"run_id"`
	SeedURL         string        `json:"seed_url"`
	OutputPath      string        `json:"output_path"`
	LinksDiscovered int           `json:"links_discovered"`
	LinksProcessed  int           `json:"links_processed"`
	LinksSkipped    int           `json:"links_skipped"`
	Attempts        int           `json:"attempts"`
	Failures        int           `json:"failures"`
	RecordsWritten  int           `json:"records_written"`
	DatasetTotal    int           `json:"dataset_total"`
	Duration        time.Duration `json:"duration"`
}
