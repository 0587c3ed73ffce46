package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2,
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastConfig(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("not yet")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := RetryFunc(context.Background(), fastConfig(), func() error {
		calls++
		return errors.New("always")
	})
	if err == nil || err.Error() != "always" {
		t.Errorf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetry_RetryIfStopsEarly(t *testing.T) {
	permanent := errors.New("permanent")
	cfg := fastConfig()
	cfg.RetryIf = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	err := RetryFunc(context.Background(), cfg, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("expected one attempt with permanent error, got %d calls, err %v", calls, err)
	}
}

func TestRetry_OnRetryCalled(t *testing.T) {
	cfg := fastConfig()
	var attempts []int
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { attempts = append(attempts, attempt) }

	_ = RetryFunc(context.Background(), cfg, func() error { return errors.New("x") })
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v", attempts)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryFunc(ctx, fastConfig(), func() error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("expected immediate cancellation, got %v after %d calls", err, calls)
	}
}

func TestCalculateBackoff_GrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second, time.Second}
	for i, w := range want {
		if got := calculateBackoff(i+1, cfg); got != w {
			t.Errorf("attempt %d: got %v, want %v", i+1, got, w)
		}
	}
}

func TestCalculateBackoff_JitterBounds(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		got := calculateBackoff(1, cfg)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("jittered backoff %v out of bounds", got)
		}
	}
}

func TestBackoff_SequenceResetAndBase(t *testing.T) {
	b := NewBackoff(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second, BackoffFactor: 2})

	if d := b.Next(); d != time.Second {
		t.Errorf("first = %v", d)
	}
	if d := b.Next(); d != 2*time.Second {
		t.Errorf("second = %v", d)
	}
	if d := b.Next(); d != 4*time.Second {
		t.Errorf("third = %v", d)
	}
	if d := b.Next(); d != 4*time.Second {
		t.Errorf("capped = %v", d)
	}

	b.Reset()
	b.SetBase(500 * time.Millisecond)
	if d := b.Next(); d != 500*time.Millisecond {
		t.Errorf("after reset with new base = %v", d)
	}
	if b.Base() != 500*time.Millisecond {
		t.Errorf("Base() = %v", b.Base())
	}

	b.SetBase(0)
	if b.Base() != 500*time.Millisecond {
		t.Error("non-positive base must be ignored")
	}

	b.SetBase(10 * time.Second)
	b.Reset()
	if d := b.Next(); d != 10*time.Second {
		t.Errorf("base above cap should raise the cap, got %v", d)
	}
}

func TestSleep_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled, got %v", err)
	}
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2024, 3, 9, 13, 30, 0, 0, time.UTC)
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "redis-publish",
		MaxFailures: 2,
		Cooldown:    time.Second,
		Now:         func() time.Time { return now },
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})
	boom := errors.New("boom")
	calls := 0
	fail := func() error { calls++; return boom }
	ok := func() error { calls++; return nil }

	for i := 0; i < 2; i++ {
		if err := cb.Execute(fail); !errors.Is(err, boom) {
			t.Fatalf("call %d = %v", i, err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %s", cb.State())
	}
	if err := cb.Execute(ok); !errors.Is(err, ErrCircuitOpen) || calls != 2 {
		t.Fatalf("open breaker ran fn: err=%v calls=%d", err, calls)
	}

	now = now.Add(time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state after cooldown = %s", cb.State())
	}
	if err := cb.Execute(fail); !errors.Is(err, boom) {
		t.Fatalf("trial = %v", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("failed trial should reopen, state = %s", cb.State())
	}

	now = now.Add(time.Second)
	if err := cb.Execute(ok); err != nil {
		t.Fatalf("second trial = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state = %s", cb.State())
	}

	want := []string{"closed>open", "open>half-open", "half-open>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2})
	boom := errors.New("boom")
	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return boom })
	if cb.State() != StateClosed {
		t.Errorf("non-consecutive failures opened the breaker")
	}
}
