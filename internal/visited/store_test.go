package visited

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	seen, err := store.Has(ctx, "https://example.com/recipe/pasta")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "https://example.com/recipe/pasta"))
	require.NoError(t, store.Add(ctx, "https://example.com/recipe/pasta"))

	seen, _ = store.Has(ctx, "https://example.com/recipe/pasta")
	assert.True(t, seen)
	assert.Equal(t, 1, store.Len())
	assert.NoError(t, store.Close())
}

func TestMemoryStore_ExactStringIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Add(ctx, "https://example.com/recipe/pasta"))

	for _, variant := range []string{
		"https://example.com/recipe/pasta/",
		"https://example.com/recipe/pasta?x=1",
		"https://Example.com/recipe/pasta",
	} {
		seen, err := store.Has(ctx, variant)
		require.NoError(t, err)
		assert.False(t, seen, variant)
	}
}

func TestFileStore_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.jsonl.visited")

	store, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, "https://example.com/recipe/a"))
	require.NoError(t, store.Add(ctx, "https://example.com/recipe/b"))
	require.NoError(t, store.Add(ctx, "https://example.com/recipe/a"))
	require.NoError(t, store.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/recipe/a\nhttps://example.com/recipe/b\n", string(data))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	seen, err := reopened.Has(ctx, "https://example.com/recipe/b")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, 2, reopened.Len())
	assert.Equal(t, path, reopened.Path())
}

func TestFileStore_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v")
	require.NoError(t, os.WriteFile(path, []byte("\nhttps://example.com/recipe/a\n\n"), 0o644))

	store, err := OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	assert.Equal(t, 1, store.Len())
}

func TestFileStore_RejectsLineBreaks(t *testing.T) {
	store, err := OpenFile(filepath.Join(t.TempDir(), "v"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.Add(context.Background(), "https://example.com/a\nb"))
}

func TestOpen_SelectsImplementation(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	path := FilePathFor(filepath.Join(t.TempDir(), "data.jsonl"))
	store, err = Open(ctx, Options{FilePath: path})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
	require.NoError(t, store.Close())
}

func TestFilePathFor(t *testing.T) {
	assert.Equal(t, "data/out.jsonl.visited", FilePathFor("data/out.jsonl"))
}

func TestPostgresStore_Integration(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := OpenPostgres(ctx, dbURL)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	url := "https://example.com/recipe/" + t.Name()
	require.NoError(t, store.Add(ctx, url))
	seen, err := store.Has(ctx, url)
	require.NoError(t, err)
	assert.True(t, seen)
}
