package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestRetrier(attempts int, slept *[]time.Duration) *Retrier {
	logger, _ := zap.NewDevelopment()
	r := New(attempts, 5*time.Second, logger)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return ctx.Err()
	}
	return r
}

func TestRetrier_Delay(t *testing.T) {
	r := New(3, 5*time.Second, nil)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 5 * time.Second},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
	}

	for _, tt := range tests {
		if got := r.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetrier_Defaults(t *testing.T) {
	r := New(0, 0, nil)
	if r.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", r.Attempts)
	}
	if r.BaseDelay != 5*time.Second {
		t.Errorf("BaseDelay = %v, want 5s", r.BaseDelay)
	}
}

func TestRetrier_Do_SucceedsAfterFailures(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(3, &slept)

	calls := 0
	err := r.Do(context.Background(), "Error fetching channels", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("HTTP 502")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestRetrier_Do_ExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(3, &slept)

	cause := errors.New("HTTP 500")
	calls := 0
	err := r.Do(context.Background(), "Error fetching now playing", func(ctx context.Context) error {
		calls++
		return cause
	})
	if !errors.Is(err, cause) {
		t.Fatalf("Do() error = %v, want wrapped %v", err, cause)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(slept) != 2 {
		t.Errorf("slept %d times, want 2 (no wait after the last attempt)", len(slept))
	}
}

func TestRetrier_Do_ContextCancelled(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(3, &slept)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := r.Do(ctx, "op", func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() = %v, want context.Canceled", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepContext() = %v, want nil", err)
	}
}
