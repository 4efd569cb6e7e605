package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-alpaca/internal/config"
	"github.com/jonathan/recipe-alpaca/internal/dataset"
	"github.com/jonathan/recipe-alpaca/internal/schemas"
)

var countCmd = &cobra.Command{
	Use:   "count [dataset]",
	Short: "Print the number of records in a dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCount,
}

var countValidate bool

func init() {
	countCmd.Flags().BoolVar(&countValidate, "validate", false, "Also check that every line is an instruction/input/output record")

	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	path := config.DefaultOutput
	if len(args) == 1 {
		path = args[0]
	}

	total, err := dataset.CountLines(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s: %d entries\n", path, total)

	if !countValidate || total == 0 {
		return nil
	}

	var invalid []int
	err = dataset.EachLine(path, func(n int, line string) error {
		if err := schemas.ValidateDatasetLine(line); err != nil {
			invalid = append(invalid, n)
			logger.Debug().Int("line", n).Err(err).Msg("Invalid record")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(invalid) == 0 {
		_, _ = fmt.Fprintln(out, "all entries are valid records")
		return nil
	}
	_, _ = fmt.Fprintf(out, "%d invalid entries (lines %s)\n", len(invalid), joinInts(invalid, 10))
	return nil
}

// joinInts formats at most limit numbers, noting how many were left out.
func joinInts(nums []int, limit int) string {
	parts := make([]string, 0, min(len(nums), limit)+1)
	for i, n := range nums {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(nums)-limit))
			break
		}
		parts = append(parts, fmt.Sprint(n))
	}
	return strings.Join(parts, ", ")
}
