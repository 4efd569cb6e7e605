package crawling

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRecipeLinks_FirstInDocumentOrder(t *testing.T) {
	html := `
		<html>
			<body>
				<a href="/recipe/pasta">Pasta</a>
				<a href="/about">About</a>
				<a href="/recipes/soup">Soup</a>
			</body>
		</html>
	`

	links, err := SelectRecipeLinks(html, "https://example.com/", 1, DefaultLinkFilter("example.com", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/recipe/pasta"}, links)
}

func TestSelectRecipeLinks_FiltersNonRecipeLinks(t *testing.T) {
	html := `
		<a href="/recipe/pasta">Pasta</a>
		<a href="/about">About</a>
		<a href="/recipes/soup">Soup</a>
		<a href="/contact">Contact</a>
	`

	links, err := SelectRecipeLinks(html, "https://example.com/", 10, DefaultLinkFilter("example.com", nil))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"https://example.com/recipe/pasta",
		"https://example.com/recipes/soup",
	}, links)
}

func TestSelectRecipeLinks_AllPatterns(t *testing.T) {
	html := `
		<a href="/recipe/a">1</a>
		<a href="/recipes/b">2</a>
		<a href="/recipe-c">3</a>
		<a href="/healthy-recipes-d">4</a>
		<a href="/cooking/e">5</a>
		<a href="/food/f">6</a>
		<a href="/RECIPE/G">7</a>
		<a href="/blog/h">8</a>
	`

	links, err := SelectRecipeLinks(html, "https://example.com/", 20, DefaultLinkFilter("example.com", nil))
	require.NoError(t, err)
	assert.Len(t, links, 7)
	assert.Contains(t, links, "https://example.com/RECIPE/G", "pattern matching is case-insensitive")
	assert.NotContains(t, links, "https://example.com/blog/h")
}

func TestSelectRecipeLinks_DomainSubstring(t *testing.T) {
	html := `
		<a href="https://example.com/recipe/a">Same</a>
		<a href="https://other.com/recipe/b">Other</a>
		<a href="https://example.com.evil.com/recipe/c">Lookalike</a>
	`

	links, err := SelectRecipeLinks(html, "https://example.com/", 10, DefaultLinkFilter("example.com", nil))
	require.NoError(t, err)
	assert.Contains(t, links, "https://example.com/recipe/a")
	assert.NotContains(t, links, "https://other.com/recipe/b")
	// plain substring matching, not host comparison
	assert.Contains(t, links, "https://example.com.evil.com/recipe/c")
}

func TestSelectRecipeLinks_ExcludesVisited(t *testing.T) {
	html := `
		<a href="/recipe/pasta">Pasta</a>
		<a href="/recipes/soup">Soup</a>
	`
	visited := map[string]bool{"https://example.com/recipe/pasta": true}
	filter := DefaultLinkFilter("example.com", func(u string) bool { return visited[u] })

	links, err := SelectRecipeLinks(html, "https://example.com/", 10, filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/recipes/soup"}, links)
}

func TestSelectRecipeLinks_NoNormalization(t *testing.T) {
	html := `
		<a href="/recipe/pasta">A</a>
		<a href="/recipe/pasta/">B</a>
		<a href="/recipe/pasta?ref=nav">C</a>
		<a href="/recipe/pasta">Duplicate</a>
	`

	links, err := SelectRecipeLinks(html, "https://example.com/", 10, DefaultLinkFilter("example.com", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/recipe/pasta",
		"https://example.com/recipe/pasta/",
		"https://example.com/recipe/pasta?ref=nav",
	}, links)
}

func TestSelectRecipeLinks_ResolvesRelativeHrefs(t *testing.T) {
	html := `
		<a href="soup">Sibling</a>
		<a href="../food/bread">Parent</a>
		<a href="//example.com/recipe/cake">Scheme relative</a>
	`

	links, err := SelectRecipeLinks(html, "https://example.com/recipes/index", 10, DefaultLinkFilter("example.com", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/recipes/soup",
		"https://example.com/food/bread",
		"https://example.com/recipe/cake",
	}, links)
}

func TestSelectRecipeLinks_RespectsMax(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString(`<a href="/recipe/dish-`)
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString(`">dish</a>`)
	}

	for _, limit := range []int{0, 1, 3, 10} {
		links, err := SelectRecipeLinks(sb.String(), "https://example.com/", limit, DefaultLinkFilter("example.com", nil))
		require.NoError(t, err)
		assert.Len(t, links, limit)
	}
}

func TestSelectRecipeLinks_InvalidPageURL(t *testing.T) {
	_, err := SelectRecipeLinks("<a href='/recipe/a'>a</a>", "not-a-url", 10, DefaultLinkFilter("example.com", nil))
	require.Error(t, err)

	var linkErr *LinkExtractionError
	assert.ErrorAs(t, err, &linkErr)
	assert.Contains(t, err.Error(), "invalid page URL")
}

func TestFindRecipeLinks_FetchesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a href="/recipe/pasta">Pasta</a><a href="/about">About</a>`))
	}))
	defer server.Close()

	domain := strings.TrimPrefix(server.URL, "http://")
	links, err := FindRecipeLinks(context.Background(), server.URL, 5, DefaultLinkFilter(domain, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/recipe/pasta"}, links)
}

func TestFindRecipeLinks_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	links, err := FindRecipeLinks(context.Background(), server.URL, 5, DefaultLinkFilter("127.0.0.1", nil), nil)
	require.Error(t, err)
	assert.Empty(t, links)

	var linkErr *LinkExtractionError
	assert.ErrorAs(t, err, &linkErr)
	assert.Contains(t, err.Error(), "403")
}

func TestLinkFilter_Match(t *testing.T) {
	filter := DefaultLinkFilter("example.com", func(u string) bool { return u == "https://example.com/recipe/seen" })

	assert.True(t, filter.Match("https://example.com/recipe/new"))
	assert.False(t, filter.Match("https://example.com/recipe/seen"))
	assert.False(t, filter.Match("https://example.com/about"))
	assert.False(t, filter.Match("https://other.org/recipe/new"))
}
