package resilience_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vaanilabs/vaani/internal/resilience"
	"github.com/vaanilabs/vaani/pkg/provider/stt"
	sttmock "github.com/vaanilabs/vaani/pkg/provider/stt/mock"
)

func TestSTTFallbackPrimaryHealthy(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Provider{Text: "primary transcript", Language: "en"}
	fallback := &sttmock.Provider{Text: "fallback transcript", Language: "en"}

	f := resilience.NewSTTFallback(primary, resilience.FallbackConfig{})
	f.AddFallback(fallback)

	res, err := f.Transcribe(context.Background(), stt.Request{Audio: []byte("wav")})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "primary transcript" {
		t.Errorf("text: got %q, want primary transcript", res.Text)
	}
	if len(fallback.Requests()) != 0 {
		t.Errorf("fallback was called %d times, want 0", len(fallback.Requests()))
	}
}

func TestSTTFallbackFailover(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Provider{Err: errors.New("api quota exceeded")}
	fallback := &sttmock.Provider{Text: "fallback transcript", Language: "hi"}

	f := resilience.NewSTTFallback(primary, resilience.FallbackConfig{})
	f.AddFallback(fallback)

	res, err := f.Transcribe(context.Background(), stt.Request{Audio: []byte("wav")})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "fallback transcript" || res.Language != "hi" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSTTFallbackAllFailed(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Provider{Err: errors.New("down")}
	fallback := &sttmock.Provider{Err: errors.New("also down")}

	f := resilience.NewSTTFallback(primary, resilience.FallbackConfig{})
	f.AddFallback(fallback)

	_, err := f.Transcribe(context.Background(), stt.Request{Audio: []byte("wav")})
	if !errors.Is(err, resilience.ErrAllFailed) {
		t.Errorf("expected ErrAllFailed, got %v", err)
	}
}

func TestSTTFallbackSkipsOpenBreaker(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Provider{Err: errors.New("down")}
	fallback := &sttmock.Provider{Text: "ok"}

	f := resilience.NewSTTFallback(primary, resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 1},
	})
	f.AddFallback(fallback)

	// First call trips the primary's breaker, second call must not touch the
	// primary at all.
	if _, err := f.Transcribe(context.Background(), stt.Request{}); err != nil {
		t.Fatalf("first Transcribe: %v", err)
	}
	before := len(primary.Requests())
	if _, err := f.Transcribe(context.Background(), stt.Request{}); err != nil {
		t.Fatalf("second Transcribe: %v", err)
	}
	if got := len(primary.Requests()); got != before {
		t.Errorf("primary called while breaker open: %d -> %d requests", before, got)
	}
}
