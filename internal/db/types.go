package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusCanceled  = "canceled"
)

// Run is a row of crawl_runs
type Run struct {
	ID             uuid.UUID  `json:"id"`
	SeedURL        string     `json:"seed_url"`
	OutputPath     string     `json:"output_path"`
	Status         string     `json:"status"`
	LinksProcessed int        `json:"links_processed"`
	RecordsWritten int        `json:"records_written"`
	Failures       int        `json:"failures"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// RunStats are the counters stored when a run completes
type RunStats struct {
	LinksProcessed int
	RecordsWritten int
	Failures       int
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS visited_urls (
		url        TEXT PRIMARY KEY,
		visited_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS crawl_runs (
		id              UUID PRIMARY KEY,
		seed_url        TEXT NOT NULL,
		output_path     TEXT NOT NULL,
		status          TEXT NOT NULL,
		links_processed INTEGER NOT NULL DEFAULT 0,
		records_written INTEGER NOT NULL DEFAULT 0,
		failures        INTEGER NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at    TIMESTAMPTZ
	)`,
}
