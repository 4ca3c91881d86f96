package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vaanilabs/vaani/internal/resilience"
)

var errBoom = errors.New("boom")

func failN(cb *resilience.CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	t.Parallel()
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: 3,
	})

	failN(cb, 2)
	if got := cb.State(); got != resilience.StateClosed {
		t.Fatalf("state after 2 failures: got %v, want closed", got)
	}

	failN(cb, 1)
	if got := cb.State(); got != resilience.StateOpen {
		t.Fatalf("state after 3 failures: got %v, want open", got)
	}

	err := cb.Execute(func() error {
		t.Fatal("fn must not run while open")
		return nil
	})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerSuccessResetsCounter(t *testing.T) {
	t.Parallel()
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 2})

	failN(cb, 1)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	failN(cb, 1)
	if got := cb.State(); got != resilience.StateClosed {
		t.Errorf("state: got %v, want closed (counter should have reset)", got)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	t.Parallel()
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	failN(cb, 1)
	if got := cb.State(); got != resilience.StateOpen {
		t.Fatalf("state: got %v, want open", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := cb.State(); got != resilience.StateHalfOpen {
		t.Fatalf("state after timeout: got %v, want half-open", got)
	}

	// Enough successful probes close the breaker.
	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
	}
	if got := cb.State(); got != resilience.StateClosed {
		t.Errorf("state after probes: got %v, want closed", got)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 10 * time.Millisecond,
	})

	failN(cb, 1)
	time.Sleep(20 * time.Millisecond)

	failN(cb, 1) // probe fails
	if got := cb.State(); got != resilience.StateOpen {
		t.Errorf("state after failed probe: got %v, want open", got)
	}
}

func TestBreakerReset(t *testing.T) {
	t.Parallel()
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 1})

	failN(cb, 1)
	cb.Reset()
	if got := cb.State(); got != resilience.StateClosed {
		t.Errorf("state after Reset: got %v, want closed", got)
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("Execute after Reset: %v", err)
	}
}
