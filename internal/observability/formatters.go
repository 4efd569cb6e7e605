// Package observability provides logging setup and formatted terminal output.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/recipe-alpaca/internal/db"
	"github.com/jonathan/recipe-alpaca/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad fits a line to the inner box width, counting characters rather than bytes.
func pad(line string) string {
	width := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > width {
		return shorten(line, width)
	}
	return line + strings.Repeat(" ", width-n)
}

// shorten cuts s to at most limit characters, marking the cut with "...".
func shorten(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// PrintRunSummary outputs the counters of a finished run.
func (p *Printer) PrintRunSummary(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:          %s\n", summary.RunID)
	fmt.Fprintf(&sb, "Seed:         %s\n", summary.SeedURL)
	fmt.Fprintf(&sb, "Dataset:      %s\n", summary.OutputPath)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Links found:  %d\n", summary.LinksDiscovered)
	fmt.Fprintf(&sb, "Processed:    %d\n", summary.LinksProcessed)
	fmt.Fprintf(&sb, "Skipped:      %d\n", summary.LinksSkipped)
	fmt.Fprintf(&sb, "Attempts:     %d (%d failed)\n", summary.Attempts, summary.Failures)
	fmt.Fprintf(&sb, "Records:      %d written, %d in dataset\n", summary.RecordsWritten, summary.DatasetTotal)
	fmt.Fprintf(&sb, "Duration:     %s", summary.Duration.Round(100*time.Millisecond))

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintRun outputs a stored run record.
func (p *Printer) PrintRun(run *db.Run) {
	if run == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:          %s\n", run.ID)
	fmt.Fprintf(&sb, "Status:       %s\n", run.Status)
	fmt.Fprintf(&sb, "Seed:         %s\n", run.SeedURL)
	fmt.Fprintf(&sb, "Dataset:      %s\n", run.OutputPath)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Processed:    %d\n", run.LinksProcessed)
	fmt.Fprintf(&sb, "Records:      %d\n", run.RecordsWritten)
	fmt.Fprintf(&sb, "Failures:     %d\n", run.Failures)
	fmt.Fprintf(&sb, "Started:      %s", run.CreatedAt.Format(time.DateTime))
	if run.CompletedAt != nil {
		fmt.Fprintf(&sb, "\nFinished:     %s (%s)", run.CompletedAt.Format(time.DateTime),
			run.CompletedAt.Sub(run.CreatedAt).Round(time.Second))
	}

	p.printBox("CRAWL RUN", sb.String())
}

// PrintLinks outputs discovered recipe links.
func (p *Printer) PrintLinks(seedURL string, links []string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Seed: %s\n", seedURL)
	fmt.Fprintf(&sb, "Found %d recipe links", len(links))
	if len(links) > 0 {
		sb.WriteString(":\n\n")
		for i, link := range links {
			fmt.Fprintf(&sb, "%2d. %s", i+1, link)
			if i < len(links)-1 {
				sb.WriteString("\n")
			}
		}
	}

	p.printBox("DISCOVERED RECIPE LINKS", sb.String())
}

// PrintRecords outputs a preview of generated records.
func (p *Printer) PrintRecords(url string, records []types.Record) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", url)
	fmt.Fprintf(&sb, "Generated %d instruction pairs:\n\n", len(records))

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		record := records[i]
		fmt.Fprintf(&sb, "• %s\n", oneLine(record.Instruction))
		if record.Input != "" {
			fmt.Fprintf(&sb, "  in:  %s\n", oneLine(record.Input))
		}
		fmt.Fprintf(&sb, "  out: %s", oneLine(record.Output))
		if i < count-1 {
			sb.WriteString("\n\n")
		}
	}

	if len(records) > maxItemsToShow {
		fmt.Fprintf(&sb, "\n\n... and %d more", len(records)-maxItemsToShow)
	}

	p.printBox("GENERATED PAIRS", sb.String())
}

// oneLine flattens whitespace so multi-line markdown fits on a box row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
