package llm

import (
	"context"
	"sync"
)

// Fake is a scripted Client for tests. Respond, when set, takes precedence
// over Response and Err.
type Fake struct {
	Response string
	Err      error
	Respond  func(req Request) (string, error)

	mu       sync.Mutex
	requests []Request
}

func (f *Fake) Generate(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Respond != nil {
		return f.Respond(req)
	}
	return f.Response, f.Err
}

// Requests returns every request seen so far.
func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}
