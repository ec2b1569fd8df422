package resilience_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/boddenberg/influencer-bfa-go/internal/infra/resilience"
)

var errUpstream = errors.New("upstream unavailable")

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{name: "first call succeeds", retries: 3, failFirst: 0, wantCalls: 1},
		{name: "recovers on third call", retries: 3, failFirst: 2, wantCalls: 3},
		{name: "gives up after retries", retries: 2, failFirst: 10, wantCalls: 3, wantErr: true},
		{name: "no retries configured", retries: 0, failFirst: 10, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := resilience.Config{MaxRetries: tt.retries, InitialBackoff: time.Millisecond}
			calls := 0
			err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
				calls++
				if calls <= tt.failFirst {
					return errUpstream
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoff_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := resilience.RetryWithBackoff(ctx, resilience.Config{MaxRetries: 5, InitialBackoff: time.Second}, func() error {
		calls++
		return errUpstream
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("fn ran %d times on a cancelled context", calls)
	}
}

func TestRetryWithBackoff_PermanentIsUnwrapped(t *testing.T) {
	rejected := errors.New("400 bad request")

	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), resilience.Config{MaxRetries: 3}, func() error {
		calls++
		return resilience.Permanent(rejected)
	})
	if err != rejected {
		t.Fatalf("expected the bare rejection, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if resilience.Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestRetryWithBackoff_MaxBackoffCapsWait(t *testing.T) {
	cfg := resilience.Config{
		MaxRetries:     3,
		InitialBackoff: time.Hour,
		MaxBackoff:     time.Millisecond,
	}

	start := time.Now()
	_ = resilience.RetryWithBackoff(context.Background(), cfg, func() error { return errUpstream })
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("retries waited %v despite a 1ms cap", elapsed)
	}
}

func TestConfig_ForMethod(t *testing.T) {
	base := resilience.Config{MaxRetries: 4, InitialBackoff: time.Millisecond}

	for method, want := range map[string]int{
		http.MethodGet:    4,
		http.MethodHead:   4,
		http.MethodPost:   0,
		http.MethodPatch:  0,
		http.MethodDelete: 0,
	} {
		if got := base.ForMethod(method).MaxRetries; got != want {
			t.Errorf("%s: MaxRetries = %d, want %d", method, got, want)
		}
	}
	if base.MaxRetries != 4 {
		t.Error("ForMethod mutated the receiver")
	}
}

func TestCircuitBreaker_CountsOnlyUpstreamFailures(t *testing.T) {
	rejected := errors.New("422 profile incomplete")
	isSuccessful := func(err error) bool { return err == nil || errors.Is(err, rejected) }

	cb := resilience.NewCircuitBreaker("backend", isSuccessful, zap.NewNop())
	for i := 0; i < 10; i++ {
		_, _ = cb.Execute(func() (any, error) { return nil, rejected })
	}
	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("rejections tripped the breaker: %v", cb.State())
	}

	cb = resilience.NewCircuitBreaker("backend", isSuccessful, zap.NewNop())
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (any, error) { return nil, errUpstream })
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker after upstream failures, got %v", cb.State())
	}

	_, err := cb.Execute(func() (any, error) { return nil, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState while open, got %v", err)
	}
}

func TestBulkhead_BlocksWhenFull(t *testing.T) {
	bh := resilience.NewBulkhead(1)

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := bh.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while full, got %v", err)
	}

	bh.Release()
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestBulkhead_DoBoundsConcurrency(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	var inFlight, peak int32
	done := make(chan error, 6)
	for i := 0; i < 6; i++ {
		go func() {
			done <- bh.Do(context.Background(), func() error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	for i := 0; i < 6; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestBulkhead_DoReturnsFnError(t *testing.T) {
	bh := resilience.NewBulkhead(0)
	if err := bh.Do(context.Background(), func() error { return errUpstream }); err != errUpstream {
		t.Fatalf("expected fn error, got %v", err)
	}
	// The slot is released even when fn fails.
	if err := bh.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("second Do: %v", err)
	}
}
