// Package main provides the recipe_alpaca CLI, which crawls a recipe website
// and turns its pages into an Alpaca-style instruction dataset.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-alpaca/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "recipe_alpaca",
	Short: "Build instruction datasets from recipe websites",
	Long: `recipe_alpaca discovers recipe pages from a seed URL, extracts their text,
asks a text-generation model for instruction/input/output pairs and appends
them to a JSON Lines dataset.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger = observability.Setup(verbose)
	},
}

var (
	verbose bool
	logger  = zerolog.Nop()
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
