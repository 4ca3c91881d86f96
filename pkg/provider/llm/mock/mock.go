// Package mock provides an in-memory llm.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/vaanilabs/vaani/pkg/provider/llm"
)

// Compile-time assertion that Provider implements llm.Provider.
var _ llm.Provider = (*Provider)(nil)

// Provider is a canned llm.Provider. It returns Response (or Err) for every
// completion and records the requests it receives.
type Provider struct {
	// Response is returned by Complete when Err is nil.
	Response string
	// Err, when set, is returned by Complete.
	Err error

	mu       sync.Mutex
	requests []llm.Request
}

// Name implements [llm.Provider].
func (p *Provider) Name() string { return "mock" }

// Complete implements [llm.Provider].
func (p *Provider) Complete(_ context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	return p.Response, nil
}

// Requests returns a copy of all requests received so far.
func (p *Provider) Requests() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.Request, len(p.requests))
	copy(out, p.requests)
	return out
}
