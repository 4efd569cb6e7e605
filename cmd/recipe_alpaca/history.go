package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-alpaca/internal/observability"
	"github.com/jonathan/recipe-alpaca/internal/visited"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show crawl state stored in PostgreSQL",
	Long: `Without arguments, lists every recipe URL recorded as visited, oldest first.
With a run ID, prints the status and counters of that run.

Only runs started with --database-url are recorded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyDatabaseURL string

func init() {
	historyCmd.Flags().StringVar(&historyDatabaseURL, "database-url", "", "PostgreSQL URL used by the run command")
	_ = historyCmd.MarkFlagRequired("database-url")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	var runID uuid.UUID
	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", args[0], err)
		}
		runID = id
	}

	ctx := cmd.Context()
	store, err := visited.OpenPostgres(ctx, historyDatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	if runID == uuid.Nil {
		urls, err := store.DB().VisitedURLs(ctx)
		if err != nil {
			return err
		}
		for _, url := range urls {
			_, _ = fmt.Fprintln(out, url)
		}
		logger.Debug().Int("count", len(urls)).Msg("Listed visited URLs")
		return nil
	}

	run, err := store.DB().GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	observability.NewPrinter(out).PrintRun(run)
	return nil
}
