package crawling

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/recipe-alpaca/internal/fetch"
)

// RecipePatterns are the URL substrings taken as a sign of recipe content.
var RecipePatterns = []string{
	"/recipe/", "/recipes/",
	"recipe-", "recipes-",
	"cooking/", "food/",
}

// LinkFilter decides which resolved links are candidate recipe pages.
type LinkFilter struct {
	// Domain must appear as a plain substring of the link. This is not a
	// host comparison: "example.com" also matches "example.com.evil.com".
	Domain string
	// Patterns are matched against the lowercased link; any match is enough.
	Patterns []string
	// Visited reports links that were already processed in this run.
	Visited func(string) bool
}

// DefaultLinkFilter returns a filter using RecipePatterns.
func DefaultLinkFilter(domain string, visited func(string) bool) LinkFilter {
	return LinkFilter{
		Domain:   domain,
		Patterns: RecipePatterns,
		Visited:  visited,
	}
}

// Match reports whether link passes the pattern, domain and visited checks.
func (f LinkFilter) Match(link string) bool {
	if !matchesPattern(strings.ToLower(link), f.Patterns) {
		return false
	}
	if !strings.Contains(link, f.Domain) {
		return false
	}
	if f.Visited != nil && f.Visited(link) {
		return false
	}
	return true
}

func matchesPattern(link string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(link, pattern) {
			return true
		}
	}
	return false
}

// FindRecipeLinks fetches pageURL and returns at most maxLinks candidate
// recipe URLs from its anchors. Fetch failures are returned as
// *LinkExtractionError with no links.
func FindRecipeLinks(ctx context.Context, pageURL string, maxLinks int, filter LinkFilter, opts *fetch.Options) ([]string, error) {
	result, err := fetch.URL(ctx, pageURL, opts)
	if err != nil {
		return nil, &LinkExtractionError{
			URL:     pageURL,
			Message: "failed to fetch page",
			Cause:   err,
		}
	}

	return SelectRecipeLinks(result.HTML, pageURL, maxLinks, filter)
}

// SelectRecipeLinks scans the anchors of htmlContent in document order,
// resolves each href against pageURL and keeps those accepted by filter.
// Scanning stops as soon as maxLinks distinct links were kept, so the
// selection depends on DOM order. The result must be treated as unordered.
func SelectRecipeLinks(htmlContent string, pageURL string, maxLinks int, filter LinkFilter) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &LinkExtractionError{
			URL:     pageURL,
			Message: "failed to parse page URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			URL:     pageURL,
			Message: fmt.Sprintf("invalid page URL: %s (must have scheme and host)", pageURL),
		}
	}

	links := make([]string, 0)
	if maxLinks <= 0 {
		return links, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			URL:     pageURL,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		link, ok := resolve(base, href)
		if !ok || seen[link] || !filter.Match(link) {
			return true
		}

		seen[link] = true
		links = append(links, link)
		return len(links) < maxLinks
	})

	return links, nil
}

// resolve turns href into an absolute URL. Absolute http(s) hrefs are kept
// verbatim so that link identity stays the exact string found on the page.
func resolve(base *url.URL, href string) (string, bool) {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, true
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
