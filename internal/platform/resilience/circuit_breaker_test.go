package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func TestCircuitBreaker_OpensAfterFailureStreak(t *testing.T) {
	t.Parallel()

	breaker := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, OpenTimeout: time.Minute, HalfOpenMaxReq: 1}, nil)

	for i := 0; i < 2; i++ {
		if err := breaker.Allow(); err != nil {
			t.Fatalf("allow before threshold: %v", err)
		}
		breaker.Record(errUpstream)
	}
	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("state=%s, want closed", got)
	}

	breaker.Record(errUpstream)
	if got := breaker.State(); got != CircuitStateOpen {
		t.Fatalf("state=%s, want open", got)
	}
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("allow while open: %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsStreak(t *testing.T) {
	t.Parallel()

	breaker := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1}, nil)

	breaker.Record(errUpstream)
	breaker.Record(nil)
	breaker.Record(errUpstream)

	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("state=%s, want closed when failures never streak", got)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	t.Parallel()

	breaker := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond, HalfOpenMaxReq: 1}, nil)
	current := time.Now()
	breaker.now = func() time.Time { return current }

	breaker.Record(errUpstream)
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("allow while open: %v", err)
	}

	current = current.Add(20 * time.Millisecond)
	if err := breaker.Allow(); err != nil {
		t.Fatalf("allow in half-open: %v", err)
	}
	breaker.Record(nil)

	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("state=%s, want closed after half-open success", got)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	breaker := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond, HalfOpenMaxReq: 1}, nil)
	current := time.Now()
	breaker.now = func() time.Time { return current }

	breaker.Record(errUpstream)
	current = current.Add(20 * time.Millisecond)
	if err := breaker.Allow(); err != nil {
		t.Fatalf("allow in half-open: %v", err)
	}
	breaker.Record(errUpstream)

	if got := breaker.State(); got != CircuitStateOpen {
		t.Fatalf("state=%s, want open after half-open failure", got)
	}
}

func TestCircuitBreaker_ClassifierFiltersFailures(t *testing.T) {
	t.Parallel()

	retryable := errors.New("retryable")
	breaker := NewCircuitBreaker(
		CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
		func(err error) bool { return errors.Is(err, retryable) },
	)

	// A terminal upstream answer must never feed the streak.
	breaker.Record(errors.New("status=404"))
	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("state=%s, want closed after non-qualifying error", got)
	}

	breaker.Record(retryable)
	if got := breaker.State(); got != CircuitStateOpen {
		t.Fatalf("state=%s, want open after qualifying error", got)
	}
}

func TestCircuitBreaker_ZeroConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	breaker := NewCircuitBreaker(CircuitBreakerConfig{}, nil)

	for i := 0; i < defaultFailureThreshold-1; i++ {
		breaker.Record(errUpstream)
	}
	if got := breaker.State(); got != CircuitStateClosed {
		t.Fatalf("state=%s, want closed below the default threshold", got)
	}

	breaker.Record(errUpstream)
	if got := breaker.State(); got != CircuitStateOpen {
		t.Fatalf("state=%s, want open at the default threshold", got)
	}
}
