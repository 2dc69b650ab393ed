package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fast(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), fast(3), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoVal_SuccessAfterTransient(t *testing.T) {
	var calls int
	var retries []int
	cfg := fast(3)
	cfg.OnRetry = func(attempt int, _ error) { retries = append(retries, attempt) }

	v, err := DoVal(context.Background(), cfg, func(_ context.Context) (float64, error) {
		calls++
		if calls < 3 {
			return 0, Transient(errors.New("lookup busy"))
		}
		return 1_250_000, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1_250_000 {
		t.Errorf("expected value 1250000, got %v", v)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("unexpected retry attempts %v", retries)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var calls int
	err := Do(context.Background(), fast(4), func(_ context.Context) error {
		calls++
		return Transient(errors.New("still busy"))
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	var calls int
	err := Do(context.Background(), fast(3), func(_ context.Context) error {
		calls++
		return errors.New("property not found")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ShouldRetryOverride(t *testing.T) {
	var calls int
	cfg := fast(2)
	cfg.ShouldRetry = func(error) bool { return true }
	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return errors.New("anything")
	})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDo_ContextCancelledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	cfg := fast(5)
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	cfg.OnRetry = func(int, error) { cancel() }

	start := time.Now()
	err := Do(ctx, cfg, func(_ context.Context) error {
		calls++
		return Transient(errors.New("busy"))
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt backoff")
	}
}

func TestBackoff_Capped(t *testing.T) {
	cfg := withDefaults(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second, Multiplier: 10})
	if d := backoff(5, cfg); d != 3*time.Second {
		t.Errorf("expected capped 3s, got %v", d)
	}
	if d := backoff(0, cfg); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(RetryConfig{Jitter: -1})
	def := DefaultRetryConfig()
	if cfg.MaxAttempts != def.MaxAttempts || cfg.InitialBackoff != def.InitialBackoff ||
		cfg.MaxBackoff != def.MaxBackoff || cfg.Multiplier != def.Multiplier {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Jitter != 0 {
		t.Errorf("negative jitter should clamp to 0, got %v", cfg.Jitter)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(5, 50)
	if cfg.MaxAttempts != 5 || cfg.InitialBackoff != 50*time.Millisecond {
		t.Errorf("unexpected config %+v", cfg)
	}
	cfg = FromConfig(0, -1)
	if cfg.MaxAttempts != 3 || cfg.InitialBackoff != 200*time.Millisecond {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}
