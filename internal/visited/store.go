// Package visited tracks which recipe URLs have already been processed.
package visited

import (
	"context"
	"sync"
)

// Store is a set of visited URLs. URLs are compared as exact strings.
type Store interface {
	Has(ctx context.Context, url string) (bool, error)
	Add(ctx context.Context, url string) error
	Close() error
}

// MemoryStore keeps the set for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{urls: make(map[string]struct{})}
}

func (s *MemoryStore) Has(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.urls[url]
	return ok, nil
}

func (s *MemoryStore) Add(_ context.Context, url string) error {
	s.mu.Lock()
	s.urls[url] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Len returns the number of URLs in the set.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}

func (s *MemoryStore) Close() error { return nil }

// Options selects a Store implementation for Open.
type Options struct {
	// DatabaseURL selects PostgresStore when set.
	DatabaseURL string
	// FilePath selects FileStore when set and DatabaseURL is empty.
	FilePath string
}

// Open returns the store described by opts, falling back to a MemoryStore.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch {
	case opts.DatabaseURL != "":
		store, err := OpenPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case opts.FilePath != "":
		store, err := OpenFile(opts.FilePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return NewMemoryStore(), nil
	}
}

// FilePathFor is the visited-set file kept next to a dataset.
func FilePathFor(datasetPath string) string {
	return datasetPath + ".visited"
}
