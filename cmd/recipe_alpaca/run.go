package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-alpaca/internal/config"
	"github.com/jonathan/recipe-alpaca/internal/fetch"
	"github.com/jonathan/recipe-alpaca/internal/generation"
	"github.com/jonathan/recipe-alpaca/internal/llm"
	"github.com/jonathan/recipe-alpaca/internal/observability"
	"github.com/jonathan/recipe-alpaca/internal/pipeline"
	"github.com/jonathan/recipe-alpaca/internal/visited"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Crawl recipes and append generated instruction pairs to the dataset",
	Long: `Discovers recipe links on the seed page, then for each link extracts the page
text, generates instruction pairs and appends them to the output file, waiting
--delay between links.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runRecipeAlpaca,
}

var (
	runConfigPath     string
	runSeedURL        string
	runDomain         string
	runMaxRecipes     int
	runPairs          int
	runOutput         string
	runDelay          time.Duration
	runProvider       string
	runModel          string
	runFormat         string
	runAPIKey         string
	runUseBrowser     bool
	runRespectRobots  bool
	runPersistVisited bool
	runDatabaseURL    string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runSeedURL, "seed-url", "u", config.DefaultSeedURL, "Page to discover recipe links from")
	runCommand.Flags().StringVar(&runDomain, "domain", "", "Substring every recipe link must contain (defaults to the seed URL)")
	runCommand.Flags().IntVar(&runMaxRecipes, "max-recipes", config.DefaultMaxRecipes, "Maximum recipes to process")
	runCommand.Flags().IntVar(&runPairs, "pairs", config.DefaultPairsPerRecipe, "Instruction pairs to generate per recipe")
	runCommand.Flags().StringVarP(&runOutput, "out", "o", config.DefaultOutput, "JSONL dataset to append to")
	runCommand.Flags().DurationVar(&runDelay, "delay", config.DefaultDelay, "Pause after each recipe")
	runCommand.Flags().StringVar(&runProvider, "provider", config.DefaultProvider, "Generation provider: gemini or openai")
	runCommand.Flags().StringVar(&runModel, "model", "", "Model name (defaults per provider)")
	runCommand.Flags().StringVar(&runFormat, "format", config.DefaultFormat, "Reply format: labeled or json")
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "API key (defaults to GEMINI_API_KEY or OPENAI_API_KEY)")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Render pages with little static text in a headless browser (requires Chrome)")
	runCommand.Flags().BoolVar(&runRespectRobots, "respect-robots", false, "Skip recipes disallowed by robots.txt")
	runCommand.Flags().BoolVar(&runPersistVisited, "persist-visited", false, "Remember processed recipes across runs in <out>.visited")
	runCommand.Flags().StringVar(&runDatabaseURL, "database-url", "", "PostgreSQL URL for the visited set and run history")

	rootCmd.AddCommand(runCommand)
}

// resolveRunConfig merges the config file, explicitly set flags, defaults
// and the environment, in that order of precedence after flags.
func resolveRunConfig(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("seed-url") {
		cfg.SeedURL = runSeedURL
	}
	if flags.Changed("domain") {
		cfg.Domain = runDomain
	}
	if flags.Changed("max-recipes") {
		cfg.MaxRecipes = runMaxRecipes
		cfg.MarkSet("max_recipes")
	}
	if flags.Changed("pairs") {
		cfg.PairsPerRecipe = runPairs
		cfg.MarkSet("pairs_per_recipe")
	}
	if flags.Changed("out") {
		cfg.Output = runOutput
	}
	if flags.Changed("delay") {
		cfg.Delay = config.Duration(runDelay)
		cfg.MarkSet("delay")
	}
	if flags.Changed("provider") {
		cfg.Provider = runProvider
	}
	if flags.Changed("model") {
		cfg.Model = runModel
	}
	if flags.Changed("format") {
		cfg.Format = runFormat
	}
	if flags.Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if flags.Changed("respect-robots") {
		cfg.RespectRobots = runRespectRobots
	}
	if flags.Changed("persist-visited") {
		cfg.PersistVisited = runPersistVisited
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	cfg.FromEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runRecipeAlpaca(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveRunConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if cfg.Verbose && !verbose {
		logger = observability.Setup(true)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	format, err := generation.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	storeOpts := visited.Options{DatabaseURL: cfg.DatabaseURL}
	if cfg.PersistVisited {
		storeOpts.FilePath = visited.FilePathFor(cfg.Output)
	}
	store, err := visited.Open(ctx, storeOpts)
	if err != nil {
		return fmt.Errorf("failed to open visited store: %w", err)
	}
	defer func() { _ = store.Close() }()
	if fs, ok := store.(*visited.FileStore); ok {
		logger.Info().Str("path", fs.Path()).Int("urls", fs.Len()).Msg("Loaded visited set")
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UseBrowser = cfg.UseBrowser

	gen := generation.NewGenerator(client, generation.Options{Format: format, Logger: logger})
	deps := pipeline.HTTPDeps(fetchOpts, gen, store, logger)
	if cfg.RespectRobots {
		deps.Robots = fetch.NewRobotsChecker(fetchOpts)
	}
	if pg, ok := store.(*visited.PostgresStore); ok {
		deps.Runs = pg.DB()
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	opts := pipeline.Options{
		SeedURL:        cfg.SeedURL,
		Domain:         cfg.LinkDomain(),
		MaxRecipes:     cfg.MaxRecipes,
		PairsPerRecipe: cfg.PairsPerRecipe,
		OutputPath:     cfg.Output,
		Delay:          cfg.Delay.Std(),
	}
	if cfg.Verbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			if event.Step == pipeline.StepGenerated {
				printer.PrintRecords(event.URL, event.Records)
			}
		}
	}

	logger.Info().
		Str("provider", string(cfg.LLMConfig().Provider)).
		Str("model", client.Model()).
		Str("format", string(format)).
		Str("out", cfg.Output).
		Msg("Starting run")

	summary, err := pipeline.NewRunner(deps, opts).Run(ctx)
	printer.PrintRunSummary(summary)
	if errors.Is(err, context.Canceled) {
		logger.Warn().Msg("Interrupted, stopping after the current step")
		return nil
	}
	return err
}
