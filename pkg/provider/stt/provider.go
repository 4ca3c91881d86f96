// Package stt defines the Provider interface for Speech-to-Text backends.
//
// Providers here are batch transcribers: the caller hands over one complete
// WAV-encoded utterance and receives the recognised text. This matches how
// audio reaches the booking service, as finished uploads or flushed
// WebSocket buffers, and keeps every backend (hosted Sarvam, a local
// whisper-server, test fakes) behind the same minimal surface.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Request is one utterance to transcribe.
type Request struct {
	// Audio is a complete WAV container (RIFF header plus PCM data).
	Audio []byte

	// Language is the expected ISO 639-1 code ("hi", "en", ...). Empty
	// requests provider-side auto-detection where supported.
	Language string
}

// Result is the outcome of a transcription.
type Result struct {
	// Text is the recognised utterance. May be empty for silent audio.
	Text string

	// Language is the language code reported by the provider, if any.
	// Providers that cannot detect language echo the request hint.
	Language string
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Name identifies the backend in logs and metrics (e.g. "sarvam").
	Name() string

	// Transcribe converts one WAV utterance to text. It blocks until the
	// backend answers or ctx is cancelled.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
