// Package db provides PostgreSQL storage for crawl state: the visited URL
// set and a history of pipeline runs.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the tables used by the crawler if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// CreateRun records the start of a pipeline run.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, seedURL, outputPath string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawl_runs (id, seed_url, output_path, status)
		 VALUES ($1, $2, $3, $4)`,
		runID, seedURL, outputPath, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun stores the final counters and status of a run.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, stats RunStats) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE crawl_runs
		 SET status = $1, links_processed = $2, records_written = $3, failures = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, stats.LinksProcessed, stats.RecordsWritten, stats.Failures, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to complete run: run %s not found", runID)
	}
	return nil
}

// GetRun loads a run by ID. It returns nil when the run does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, seed_url, output_path, status, links_processed, records_written, failures, created_at, completed_at
		 FROM crawl_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.SeedURL, &run.OutputPath, &run.Status,
		&run.LinksProcessed, &run.RecordsWritten, &run.Failures,
		&run.CreatedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// HasVisited reports whether url has been processed by any run.
func (db *DB) HasVisited(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM visited_urls WHERE url = $1)`,
		url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check visited url: %w", err)
	}
	return exists, nil
}

// MarkVisited adds url to the visited set. Marking twice is a no-op.
func (db *DB) MarkVisited(ctx context.Context, url string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO visited_urls (url) VALUES ($1) ON CONFLICT (url) DO NOTHING`,
		url,
	)
	if err != nil {
		return fmt.Errorf("failed to mark visited url: %w", err)
	}
	return nil
}

// VisitedURLs returns every visited URL, oldest first.
func (db *DB) VisitedURLs(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx, `SELECT url FROM visited_urls ORDER BY visited_at, url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list visited urls: %w", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan visited urls: %w", err)
	}
	return urls, nil
}
