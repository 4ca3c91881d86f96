// Package mock provides an in-memory STT provider for tests and for running
// the service without speech credentials.
package mock

import (
	"context"
	"sync"

	"github.com/vaanilabs/vaani/pkg/provider/stt"
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider returns a fixed transcription for every request and records the
// requests it received. Safe for concurrent use.
type Provider struct {
	// Text and Language form the canned result.
	Text     string
	Language string

	// Err, when non-nil, is returned instead of a result.
	Err error

	mu       sync.Mutex
	requests []stt.Request
}

// Name implements [stt.Provider].
func (p *Provider) Name() string { return "mock" }

// Transcribe implements [stt.Provider].
func (p *Provider) Transcribe(_ context.Context, req stt.Request) (*stt.Result, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	lang := p.Language
	if lang == "" {
		lang = req.Language
	}
	return &stt.Result{Text: p.Text, Language: lang}, nil
}

// Requests returns a copy of every request seen so far.
func (p *Provider) Requests() []stt.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]stt.Request, len(p.requests))
	copy(out, p.requests)
	return out
}
