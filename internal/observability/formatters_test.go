package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/recipe-alpaca/internal/db"
	"github.com/jonathan/recipe-alpaca/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(&types.RunSummary{
		RunID:           "8f14e45f-ceea-467f-a0e6-5b2a1c7d3b4e",
		SeedURL:         "https://example.com/recipes",
		OutputPath:      "out.jsonl",
		LinksDiscovered: 3,
		LinksProcessed:  2,
		LinksSkipped:    1,
		Attempts:        10,
		Failures:        2,
		RecordsWritten:  8,
		DatasetTotal:    20,
		Duration:        1500 * time.Millisecond,
	})

	output := buf.String()
	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "Links found:  3")
	assert.Contains(t, output, "Attempts:     10 (2 failed)")
	assert.Contains(t, output, "Records:      8 written, 20 in dataset")
	assert.Contains(t, output, "1.5s")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintLinks(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintLinks("https://example.com", []string{
		"https://example.com/recipe/pasta",
		"https://example.com/recipes/soup",
	})

	output := buf.String()
	assert.Contains(t, output, "Found 2 recipe links")
	assert.Contains(t, output, " 1. https://example.com/recipe/pasta")
	assert.Contains(t, output, " 2. https://example.com/recipes/soup")
}

func TestPrintLinks_None(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintLinks("https://example.com", nil)
	assert.Contains(t, buf.String(), "Found 0 recipe links")
}

func TestPrintRecords_Truncated(t *testing.T) {
	records := make([]types.Record, 7)
	for i := range records {
		records[i] = types.Record{Instruction: "Summarize", Output: "## Steps\n1. Boil"}
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecords("https://example.com/recipe/pasta", records)

	output := buf.String()
	assert.Contains(t, output, "Generated 7 instruction pairs")
	assert.Contains(t, output, "out: ## Steps 1. Boil")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "in:")
}

func TestPrintBox_LineWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "crème brûlée "+strings.Repeat("x", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintRun(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(95 * time.Second)
	p.PrintRun(&db.Run{
		ID:             uuid.MustParse("8f14e45f-ceea-467f-a0e6-5b2a1c7d3b4e"),
		SeedURL:        "https://example.com/recipes",
		OutputPath:     "out.jsonl",
		Status:         db.RunStatusCompleted,
		LinksProcessed: 4,
		RecordsWritten: 18,
		Failures:       2,
		CreatedAt:      started,
		CompletedAt:    &finished,
	})

	output := buf.String()
	assert.Contains(t, output, "CRAWL RUN")
	assert.Contains(t, output, "Status:       completed")
	assert.Contains(t, output, "Records:      18")
	assert.Contains(t, output, "2026-03-01 12:01:35 (1m35s)")
}

func TestPrintRun_Running(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRun(&db.Run{Status: db.RunStatusRunning, CreatedAt: time.Now()})
	assert.NotContains(t, buf.String(), "Finished")

	buf.Reset()
	NewPrinter(&buf).PrintRun(nil)
	assert.Empty(t, buf.String())
}
