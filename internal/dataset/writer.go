// Package dataset appends instruction records to a JSON Lines file.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/recipe-alpaca/internal/types"
)

// WriteError is returned when the dataset file cannot be read or written.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dataset %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("dataset %s: %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// WriteResult reports what an Append did.
type WriteResult struct {
	Path     string
	Added    int
	Existing int
	Total    int
}

// CountLines returns the number of lines in the file at path, counting a
// final line without a trailing newline. A missing file has zero lines.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, &WriteError{Path: path, Message: "failed to open", Cause: err}
	}
	defer func() { _ = f.Close() }()

	reader := bufio.NewReader(f)
	count := 0
	inLine := false
	for {
		line, err := reader.ReadSlice('\n')
		switch {
		case err == nil:
			count++
			inLine = false
		case errors.Is(err, bufio.ErrBufferFull):
			inLine = true
		case errors.Is(err, io.EOF):
			if inLine || len(line) > 0 {
				count++
			}
			return count, nil
		default:
			return 0, &WriteError{Path: path, Message: "failed to read", Cause: err}
		}
	}
}

// Append writes each record as one compact JSON object per line at the end
// of the file at path, creating the file and its parent directories as
// needed. Existing content is never rewritten. The write is not
// transactional: a failure part way leaves the earlier records in place.
func Append(path string, records []types.Record) (*WriteResult, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &WriteError{Path: path, Message: "failed to create directory", Cause: err}
	}

	existing, err := CountLines(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &WriteError{Path: path, Message: "failed to open for append", Cause: err}
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, record := range records {
		// Encode terminates each value with a newline.
		if err := enc.Encode(record); err != nil {
			_ = f.Close()
			return nil, &WriteError{Path: path, Message: "failed to encode record", Cause: err}
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, &WriteError{Path: path, Message: "failed to write records", Cause: err}
	}
	if err := f.Close(); err != nil {
		return nil, &WriteError{Path: path, Message: "failed to close", Cause: err}
	}

	return &WriteResult{
		Path:     path,
		Added:    len(records),
		Existing: existing,
		Total:    existing + len(records),
	}, nil
}

// Summary is the human-readable line logged after an append.
func (r *WriteResult) Summary() string {
	return fmt.Sprintf("Added %d instruction pairs to %s (now contains %d total entries)", r.Added, r.Path, r.Total)
}

// EachLine calls fn with every line of the file at path and its 1-based
// line number, stopping at the first error fn returns.
func EachLine(path string, fn func(n int, line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return &WriteError{Path: path, Message: "failed to open", Cause: err}
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		if err := fn(n, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return &WriteError{Path: path, Message: "failed to read", Cause: err}
	}
	return nil
}
