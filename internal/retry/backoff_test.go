package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},  // base * 2^0 = 100ms
		{1, 200 * time.Millisecond},  // base * 2^1 = 200ms
		{2, 400 * time.Millisecond},  // base * 2^2 = 400ms
		{3, 800 * time.Millisecond},  // base * 2^3 = 800ms
		{4, 1600 * time.Millisecond}, // base * 2^4 = 1600ms
	}

	for _, tt := range tests {
		result := ExponentialBackoff(tt.attempt, base)
		if result != tt.expected {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, result, tt.expected)
		}
	}
}

func TestDo(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		attempts  int
		failFirst int
		wantCalls int
		wantErr   error
	}{
		{"succeeds first try", 3, 0, 1, nil},
		{"succeeds after retries", 3, 2, 3, nil},
		{"exhausts attempts", 3, 5, 3, errBoom},
		{"zero attempts runs once", 0, 5, 1, errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), tt.attempts, time.Millisecond, func(context.Context) error {
				calls++
				if calls <= tt.failFirst {
					return errBoom
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got err %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("got %d calls, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, 5, time.Hour, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
