// Package pipeline runs the crawl: discover recipe links from a seed page,
// then for each link extract its text, generate instruction records and
// append them to the dataset.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/recipe-alpaca/internal/crawling"
	"github.com/jonathan/recipe-alpaca/internal/dataset"
	"github.com/jonathan/recipe-alpaca/internal/db"
	"github.com/jonathan/recipe-alpaca/internal/fetch"
	"github.com/jonathan/recipe-alpaca/internal/types"
	"github.com/jonathan/recipe-alpaca/internal/visited"
)

// ProgressEvent reports the outcome of one link
type ProgressEvent struct {
	RunID   string         `json:"run_id"`
	URL     string         `json:"url"`
	Step    string         `json:"step"`
	Message string         `json:"message"`
	Records []types.Record `json:"records,omitempty"`
}

// Progress steps
const (
	StepSkipped   = "skipped"
	StepGenerated = "generated"
	StepWritten   = "written"
)

// ProgressCallback is called as links are processed
type ProgressCallback func(event ProgressEvent)

// PairGenerator produces records from page text.
type PairGenerator interface {
	Generate(ctx context.Context, text string, n int) ([]types.Record, []error)
}

// RobotsPolicy decides whether a link may be fetched.
type RobotsPolicy interface {
	Allowed(ctx context.Context, url string) (bool, error)
}

// RunRecorder stores run history.
type RunRecorder interface {
	CreateRun(ctx context.Context, runID uuid.UUID, seedURL, outputPath string) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, stats db.RunStats) error
}

// Deps are the collaborators of a Runner. Discover, Extract, Generator,
// Write and Visited are required.
type Deps struct {
	Discover  func(ctx context.Context, pageURL string, maxLinks int, filter crawling.LinkFilter) ([]string, error)
	Extract   func(ctx context.Context, url string) (string, error)
	Generator PairGenerator
	Write     func(path string, records []types.Record) (*dataset.WriteResult, error)
	// Count reports the dataset size when nothing was written; optional.
	Count   func(path string) (int, error)
	Visited visited.Store
	// Robots is consulted before each link when set.
	Robots RobotsPolicy
	// Runs records run history when set.
	Runs   RunRecorder
	Logger zerolog.Logger
	// Sleep waits between links; defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// HTTPDeps wires the network-backed collaborators.
func HTTPDeps(fetchOpts *fetch.Options, gen PairGenerator, store visited.Store, logger zerolog.Logger) Deps {
	return Deps{
		Discover: func(ctx context.Context, pageURL string, maxLinks int, filter crawling.LinkFilter) ([]string, error) {
			return crawling.FindRecipeLinks(ctx, pageURL, maxLinks, filter, fetchOpts)
		},
		Extract: func(ctx context.Context, url string) (string, error) {
			return fetch.PageText(ctx, url, fetchOpts)
		},
		Generator: gen,
		Write:     dataset.Append,
		Count:     dataset.CountLines,
		Visited:   store,
		Logger:    logger,
	}
}

// Options holds configuration for a run
type Options struct {
	SeedURL string
	// Domain is the substring recipe links must contain.
	Domain         string
	MaxRecipes     int
	PairsPerRecipe int
	OutputPath     string
	Delay          time.Duration
	OnProgress     ProgressCallback
}

// Runner executes the crawl loop. A Runner is not safe for concurrent use.
type Runner struct {
	deps Deps
	opts Options
}

// NewRunner creates a Runner.
func NewRunner(deps Deps, opts Options) *Runner {
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if opts.Domain == "" {
		opts.Domain = opts.SeedURL
	}
	return &Runner{deps: deps, opts: opts}
}

// Run discovers links once and processes each in turn, sleeping Delay after
// every link. Failures are logged and confined to the link they happened
// on. Run returns ctx.Err() with the partial summary when ctx is canceled.
func (r *Runner) Run(ctx context.Context) (*types.RunSummary, error) {
	start := time.Now()
	runID := uuid.New()
	logger := r.deps.Logger.With().Str("run_id", runID.String()).Logger()

	summary := &types.RunSummary{
		RunID:      runID.String(),
		SeedURL:    r.opts.SeedURL,
		OutputPath: r.opts.OutputPath,
	}

	r.recordStart(ctx, logger, runID)
	err := r.loop(ctx, logger, summary)
	summary.Duration = time.Since(start)
	r.recordEnd(logger, runID, summary, err)

	if summary.DatasetTotal == 0 && r.deps.Count != nil {
		if total, countErr := r.deps.Count(r.opts.OutputPath); countErr == nil {
			summary.DatasetTotal = total
		}
	}

	logger.Info().
		Int("links", summary.LinksProcessed).
		Int("records", summary.RecordsWritten).
		Int("failures", summary.Failures).
		Dur("duration", summary.Duration).
		Msg("Run finished")

	return summary, err
}

func (r *Runner) loop(ctx context.Context, logger zerolog.Logger, summary *types.RunSummary) error {
	filter := crawling.DefaultLinkFilter(r.opts.Domain, r.visitedFunc(ctx, logger))

	logger.Info().Str("seed", r.opts.SeedURL).Int("max", r.opts.MaxRecipes).Msg("Discovering recipe links")
	links, err := r.deps.Discover(ctx, r.opts.SeedURL, r.opts.MaxRecipes, filter)
	if err != nil {
		logger.Error().Err(err).Str("seed", r.opts.SeedURL).Msg("Error finding recipe links")
		links = nil
	}
	summary.LinksDiscovered = len(links)
	logger.Info().Int("count", len(links)).Msg("Found recipe links")

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.processLink(ctx, logger.With().Str("url", link).Logger(), summary, link)

		if err := r.deps.Sleep(ctx, r.opts.Delay); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (r *Runner) processLink(ctx context.Context, logger zerolog.Logger, summary *types.RunSummary, link string) {
	logger.Info().Msg("Processing recipe")
	summary.LinksProcessed++

	if err := r.deps.Visited.Add(ctx, link); err != nil {
		logger.Warn().Err(err).Msg("Failed to record visited URL")
	}

	if r.deps.Robots != nil {
		allowed, err := r.deps.Robots.Allowed(ctx, link)
		if err != nil {
			logger.Warn().Err(err).Msg("Robots check failed")
		}
		if !allowed {
			summary.LinksSkipped++
			r.emit(summary, link, StepSkipped, "disallowed by robots.txt", nil)
			logger.Info().Msg("Skipping recipe disallowed by robots.txt")
			return
		}
	}

	text, err := r.deps.Extract(ctx, link)
	if err != nil {
		summary.LinksSkipped++
		r.emit(summary, link, StepSkipped, "extraction failed", nil)
		logger.Error().Err(err).Msg("Error scraping recipe page")
		return
	}
	if text == "" {
		summary.LinksSkipped++
		r.emit(summary, link, StepSkipped, "no text content", nil)
		logger.Info().Msg("No text content found, skipping")
		return
	}
	logger.Debug().Int("chars", len([]rune(text))).Msg("Extracted page text")

	records, errs := r.deps.Generator.Generate(ctx, text, r.opts.PairsPerRecipe)
	failed := countFailures(ctx, errs)
	summary.Attempts += len(records) + failed
	summary.Failures += failed
	r.emit(summary, link, StepGenerated, "", records)
	if failed > 0 {
		logger.Warn().Int("failed", failed).Int("generated", len(records)).Msg("Some generation attempts failed")
	}

	result, err := r.deps.Write(r.opts.OutputPath, records)
	if err != nil {
		logger.Error().Err(err).Msg("Error saving instruction pairs")
		return
	}
	summary.RecordsWritten += result.Added
	summary.DatasetTotal = result.Total
	r.emit(summary, link, StepWritten, result.Summary(), records)
	logger.Info().Int("added", result.Added).Int("total", result.Total).Msg(result.Summary())
}

// countFailures counts generation errors, leaving out those caused by ctx
// ending. An interrupted attempt is neither an attempt nor a failure.
func countFailures(ctx context.Context, errs []error) int {
	ctxErr := ctx.Err()
	n := 0
	for _, err := range errs {
		if ctxErr != nil && errors.Is(err, ctxErr) {
			continue
		}
		n++
	}
	return n
}

// visitedFunc adapts the store to the link filter. A store error counts as
// not visited so the link is still offered.
func (r *Runner) visitedFunc(ctx context.Context, logger zerolog.Logger) func(string) bool {
	return func(url string) bool {
		seen, err := r.deps.Visited.Has(ctx, url)
		if err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("Visited lookup failed")
			return false
		}
		return seen
	}
}

func (r *Runner) emit(summary *types.RunSummary, url, step, message string, records []types.Record) {
	if r.opts.OnProgress == nil {
		return
	}
	r.opts.OnProgress(ProgressEvent{
		RunID:   summary.RunID,
		URL:     url,
		Step:    step,
		Message: message,
		Records: records,
	})
}

func (r *Runner) recordStart(ctx context.Context, logger zerolog.Logger, runID uuid.UUID) {
	if r.deps.Runs == nil {
		return
	}
	if err := r.deps.Runs.CreateRun(ctx, runID, r.opts.SeedURL, r.opts.OutputPath); err != nil {
		logger.Warn().Err(err).Msg("Failed to record run start")
	}
}

func (r *Runner) recordEnd(logger zerolog.Logger, runID uuid.UUID, summary *types.RunSummary, runErr error) {
	if r.deps.Runs == nil {
		return
	}
	status := db.RunStatusCompleted
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		status = db.RunStatusCanceled
	}

	// The run context may already be canceled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := r.deps.Runs.CompleteRun(ctx, runID, status, db.RunStats{
		LinksProcessed: summary.LinksProcessed,
		RecordsWritten: summary.RecordsWritten,
		Failures:       summary.Failures,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record run completion")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
