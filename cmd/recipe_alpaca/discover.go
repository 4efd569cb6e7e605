package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-alpaca/internal/config"
	"github.com/jonathan/recipe-alpaca/internal/crawling"
	"github.com/jonathan/recipe-alpaca/internal/fetch"
	"github.com/jonathan/recipe-alpaca/internal/observability"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the recipe links found on a page",
	Long:  "Fetches the seed page and prints the recipe links the run command would process, without generating anything.",
	RunE:  runDiscover,
}

var (
	discoverSeedURL    string
	discoverDomain     string
	discoverMaxRecipes int
	discoverPlain      bool
)

func init() {
	discoverCmd.Flags().StringVarP(&discoverSeedURL, "seed-url", "u", config.DefaultSeedURL, "Page to discover recipe links from")
	discoverCmd.Flags().StringVar(&discoverDomain, "domain", "", "Substring every recipe link must contain (defaults to the seed URL)")
	discoverCmd.Flags().IntVar(&discoverMaxRecipes, "max-recipes", config.DefaultMaxRecipes, "Maximum links to list")
	discoverCmd.Flags().BoolVar(&discoverPlain, "plain", false, "Print one link per line")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	if discoverMaxRecipes < 0 {
		return fmt.Errorf("--max-recipes must be non-negative")
	}
	cfg := config.Config{SeedURL: discoverSeedURL, Domain: discoverDomain}

	filter := crawling.DefaultLinkFilter(cfg.LinkDomain(), nil)
	links, err := crawling.FindRecipeLinks(cmd.Context(), cfg.SeedURL, discoverMaxRecipes, filter, fetch.DefaultOptions())
	if err != nil {
		logger.Error().Err(err).Str("seed", cfg.SeedURL).Msg("Error finding recipe links")
		links = nil
	}

	if discoverPlain {
		for _, link := range links {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), link)
		}
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintLinks(cfg.SeedURL, links)
	return nil
}
