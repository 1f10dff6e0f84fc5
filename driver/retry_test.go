package driver

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	p := RetryPolicy{Initial: time.Millisecond, MaxInterval: 5 * time.Millisecond, MaxRetries: 3}
	ctx := context.Background()

	var calls int
	err := p.Call(ctx, func() error {
		calls++
		if calls < 3 {
			return TryAgain(errors.New("slow down"))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}

	calls = 0
	err = p.Call(ctx, func() error {
		calls++
		return TryAgain(errors.New("slow down"))
	})
	var ta *TryAgainError
	if !errors.As(err, &ta) {
		t.Errorf("got %v, want a *TryAgainError", err)
	}
	if calls != 4 {
		t.Errorf("got %d calls, want 4", calls)
	}

	calls = 0
	fatal := DriverErrorf("no such id")
	err = p.Call(ctx, func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Errorf("got %v, want %v", err, fatal)
	}
	if calls != 1 {
		t.Errorf("fatal error retried: %d calls", calls)
	}

	err = p.Call(ctx, func() error { panic("boom") })
	var derr *DriverError
	if !errors.As(err, &derr) {
		t.Errorf("got %v, want a *DriverError", err)
	}
}
