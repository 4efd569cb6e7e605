// Package fetch provides generic URL fetching and HTML-to-text processing.
// This package centralizes the HTTP logic used by link discovery and page extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; RecipeAlpaca/1.0)"

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	Text        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// UseBrowser enables headless rendering when the HTTP response carries too little text.
	UseBrowser bool
	// Client overrides the HTTP client built from Timeout.
	Client *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

func (o *Options) httpClient() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// URL retrieves HTML content from a URL. Any 2xx status is a success; the
// Result is still returned alongside the error for other statuses.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := opts.httpClient().Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// PageText fetches a page and returns its flattened visible text.
// When opts.UseBrowser is set and the static HTML yields less than
// MinContentLength characters, the page is rendered in a headless browser
// and extracted again.
func PageText(ctx context.Context, urlStr string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}

	text, err := ExtractVisibleText(result.HTML)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}

	if opts.UseBrowser && ShouldUseBrowser(text) {
		log.Debug().Str("url", urlStr).Int("chars", len(text)).Msg("static text too short, rendering in browser")
		html, browserErr := WithBrowser(ctx, urlStr, opts.Timeout)
		if browserErr != nil {
			log.Warn().Err(browserErr).Str("url", urlStr).Msg("browser rendering failed, keeping static text")
			return text, nil
		}
		if rendered, extractErr := ExtractVisibleText(html); extractErr == nil {
			text = rendered
		}
	}

	return text, nil
}

// ExtractVisibleText strips all markup from html and joins every non-empty
// text node with a single space, in document order. Script, style,
// noscript and template contents and comments are not visible text.
func ExtractVisibleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(parts, " "), nil
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "#text":
			if text := cleanWhitespace(child.Text()); text != "" {
				*parts = append(*parts, text)
			}
		case "#comment", "script", "style", "noscript", "template":
			return
		default:
			collectText(child, parts)
		}
	})
}

// cleanWhitespace collapses runs of whitespace inside a text node.
func cleanWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
