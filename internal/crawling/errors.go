// Package crawling discovers candidate recipe pages from a seed page using URL-pattern heuristics.
package crawling

import "fmt"

// LinkExtractionError represents a failure in fetching a page or extracting links from it
type LinkExtractionError struct {
	URL     string
	Message string
	Cause   error
}

func (e *LinkExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link extraction error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("link extraction error for %s: %s", e.URL, e.Message)
}

func (e *LinkExtractionError) Unwrap() error {
	return e.Cause
}
