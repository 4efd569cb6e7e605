package visited

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore is a MemoryStore backed by a newline-delimited file. The file is
// read once at open and each new URL is appended as it is added.
type FileStore struct {
	*MemoryStore
	path string
	file *os.File
}

// OpenFile loads the set stored at path, creating the file if needed.
func OpenFile(path string) (*FileStore, error) {
	mem := NewMemoryStore()

	existing, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open visited file %s: %w", path, err)
	default:
		scanner := bufio.NewScanner(existing)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				mem.urls[line] = struct{}{}
			}
		}
		_ = existing.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read visited file %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open visited file %s: %w", path, err)
	}

	return &FileStore{MemoryStore: mem, path: path, file: f}, nil
}

// Add records url in memory and appends it to the file once.
func (s *FileStore) Add(ctx context.Context, url string) error {
	seen, _ := s.Has(ctx, url)
	if seen {
		return nil
	}
	if strings.ContainsAny(url, "\r\n") {
		return fmt.Errorf("visited url contains a line break: %q", url)
	}
	if _, err := s.file.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("failed to append to visited file %s: %w", s.path, err)
	}
	return s.MemoryStore.Add(ctx, url)
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Close() error {
	return s.file.Close()
}
