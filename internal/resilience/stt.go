package resilience

import (
	"context"

	"github.com/vaanilabs/vaani/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] with automatic failover across
// multiple speech-to-text backends. Each backend has its own circuit
// breaker, so a rate-limited cloud API does not take local whisper down
// with it.
type STTFallback struct {
	group *FallbackGroup[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred
// backend.
func NewSTTFallback(primary stt.Provider, cfg FallbackConfig) *STTFallback {
	return &STTFallback{
		group: NewFallbackGroup(primary, primary.Name(), cfg),
	}
}

// AddFallback registers an additional STT provider as a fallback.
func (f *STTFallback) AddFallback(provider stt.Provider) {
	f.group.AddFallback(provider.Name(), provider)
}

// Name implements [stt.Provider].
func (f *STTFallback) Name() string { return "fallback-group" }

// Transcribe implements [stt.Provider] by trying each backend in order until
// one returns a transcript.
func (f *STTFallback) Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error) {
	return ExecuteWithResult(f.group, func(p stt.Provider) (*stt.Result, error) {
		return p.Transcribe(ctx, req)
	})
}
