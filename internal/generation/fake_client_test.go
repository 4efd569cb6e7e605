package generation

import (
	"context"

	"github.com/jonathan/recipe-alpaca/internal/llm"
)

// fakeClient replays canned replies in order and records every request.
type fakeClient struct {
	replies  []string
	errs     []error
	requests []llm.Request
	json     int
}

func (f *fakeClient) next(req llm.Request) (string, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", nil
}

func (f *fakeClient) Generate(_ context.Context, req llm.Request) (string, error) {
	return f.next(req)
}

func (f *fakeClient) GenerateJSON(_ context.Context, req llm.Request) (string, error) {
	f.json++
	return f.next(req)
}

func (f *fakeClient) Model() string { return "fake" }

func (f *fakeClient) Close() error { return nil }
