package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a URL may be fetched according to its
// host's robots.txt. Parsed files are cached per scheme and host.
type RobotsChecker struct {
	opts  *Options
	agent string
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker that fetches robots.txt with opts.
func NewRobotsChecker(opts *Options) *RobotsChecker {
	if opts == nil {
		opts = DefaultOptions()
	}
	agent := opts.UserAgent
	if agent == "" {
		agent = DefaultUserAgent
	}
	return &RobotsChecker{
		opts:  opts,
		agent: agent,
		cache: make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether urlStr may be crawled. When robots.txt cannot be
// retrieved the URL is allowed and the error is returned for logging.
func (r *RobotsChecker) Allowed(ctx context.Context, urlStr string) (bool, error) {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return false, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	key := u.Scheme + "://" + u.Host
	data, ok := r.cache[key]
	if !ok {
		data, err = r.load(ctx, key+"/robots.txt")
		if err != nil {
			return true, err
		}
		r.cache[key] = data
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, r.agent), nil
}

func (r *RobotsChecker) load(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, &Error{URL: robotsURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.opts.httpClient().Do(req)
	if err != nil {
		return nil, &Error{URL: robotsURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: robotsURL, Message: "failed to read response body", Cause: err}
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, &Error{URL: robotsURL, Message: fmt.Sprintf("failed to parse robots.txt (status %d)", resp.StatusCode), Cause: err}
	}
	return data, nil
}
