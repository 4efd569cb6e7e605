package generation

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jonathan/recipe-alpaca/internal/llm"
	"github.com/jonathan/recipe-alpaca/internal/prompts"
	"github.com/jonathan/recipe-alpaca/internal/types"
	"github.com/rs/zerolog"
)

// MaxInputChars is how much page text is embedded in each prompt.
const MaxInputChars = 2000

// Format selects how replies are requested and parsed.
type Format string

const (
	// FormatLabeled asks for INSTRUCTION:/INPUT:/OUTPUT: sections.
	FormatLabeled Format = "labeled"
	// FormatJSON asks for a JSON object checked against the record schema.
	FormatJSON Format = "json"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatLabeled, FormatJSON:
		return Format(s), nil
	case "":
		return FormatLabeled, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected %q or %q)", s, FormatLabeled, FormatJSON)
	}
}

// Options configures a Generator.
type Options struct {
	Format Format
	// MaxInputChars overrides the text budget when positive.
	MaxInputChars int
	Logger        zerolog.Logger
}

// Generator produces records from page text, one service request per record.
type Generator struct {
	client   llm.Client
	format   Format
	maxChars int
	system   string
	user     string
	logger   zerolog.Logger
}

// NewGenerator builds a Generator around an LLM client. The client is not
// closed by the Generator.
func NewGenerator(client llm.Client, opts Options) *Generator {
	format := opts.Format
	if format == "" {
		format = FormatLabeled
	}
	maxChars := opts.MaxInputChars
	if maxChars <= 0 {
		maxChars = MaxInputChars
	}
	userKey := prompts.KeyUserLabeled
	if format == FormatJSON {
		userKey = prompts.KeyUserJSON
	}

	return &Generator{
		client:   client,
		format:   format,
		maxChars: maxChars,
		system:   prompts.MustGet(prompts.Generation, prompts.KeySystem),
		user:     prompts.MustGet(prompts.Generation, userKey),
		logger:   opts.Logger,
	}
}

// Truncate returns the first limit characters of text.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}

// BuildRequest returns the request sent for every attempt on text.
func (g *Generator) BuildRequest(text string) llm.Request {
	return llm.Request{
		System: g.system,
		User: prompts.Format(g.user, map[string]string{
			"Text": Truncate(text, g.maxChars),
		}),
	}
}

// Generate makes n independent requests for text and returns every record
// that parsed. Failed attempts are logged and returned alongside; they never
// stop the batch. A canceled context ends the batch early.
func (g *Generator) Generate(ctx context.Context, text string, n int) ([]types.Record, []error) {
	records := make([]types.Record, 0, max(n, 0))
	var errs []error
	req := g.BuildRequest(text)

	for attempt := 1; attempt <= n; attempt++ {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		record, err := g.attempt(ctx, req, attempt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}

	return records, errs
}

func (g *Generator) attempt(ctx context.Context, req llm.Request, attempt int) (types.Record, error) {
	var (
		reply string
		err   error
	)
	if g.format == FormatJSON {
		reply, err = g.client.GenerateJSON(ctx, req)
	} else {
		reply, err = g.client.Generate(ctx, req)
	}
	if err != nil {
		g.logger.Warn().Err(err).Int("attempt", attempt).Msg("Error generating instruction pair")
		return types.Record{}, &APICallError{Attempt: attempt, Message: "request failed", Cause: err}
	}

	var record types.Record
	if g.format == FormatJSON {
		record, err = ParseJSON(reply)
	} else {
		record, err = ParseLabeled(reply)
	}
	if err != nil {
		g.logger.Warn().Err(err).Int("attempt", attempt).Msg("Discarding unparseable instruction pair")
		return types.Record{}, err
	}

	g.logger.Debug().Int("attempt", attempt).Msg("Generated instruction pair")
	return record, nil
}
