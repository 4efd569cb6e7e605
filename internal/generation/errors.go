// Package generation turns extracted recipe text into instruction/input/output
// records by prompting a text-generation service.
package generation

import "fmt"

// APICallError wraps a failed request to the generation service.
type APICallError struct {
	Attempt int
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation attempt %d failed: %s: %v", e.Attempt, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation attempt %d failed: %s", e.Attempt, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError is returned when a reply cannot be split into the three fields.
// Token and Count describe a labeled reply whose section marker appeared the
// wrong number of times. Cause is set for JSON replies.
type ParseError struct {
	Token   string
	Count   int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Token != "" {
		msg = fmt.Sprintf("expected exactly one %q marker, found %d", e.Token, e.Count)
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
