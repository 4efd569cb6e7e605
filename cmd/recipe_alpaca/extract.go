package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-alpaca/internal/fetch"
	"github.com/jonathan/recipe-alpaca/internal/generation"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Print the visible text of a page",
	Long:  "Fetches one page and prints the text that would be sent to the generation model.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractUseBrowser bool
	extractTruncate   bool
)

func init() {
	extractCmd.Flags().BoolVar(&extractUseBrowser, "use-browser", false, "Render pages with little static text in a headless browser (requires Chrome)")
	extractCmd.Flags().BoolVar(&extractTruncate, "truncate", false, fmt.Sprintf("Only print the first %d characters, as embedded in prompts", generation.MaxInputChars))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts := fetch.DefaultOptions()
	opts.UseBrowser = extractUseBrowser

	text, err := fetch.PageText(cmd.Context(), args[0], opts)
	if err != nil {
		logger.Error().Err(err).Str("url", args[0]).Msg("Error scraping page")
		return nil
	}
	if extractTruncate {
		text = generation.Truncate(text, generation.MaxInputChars)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
