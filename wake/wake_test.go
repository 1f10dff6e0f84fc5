package wake

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocal(t *testing.T) {
	b := NewLocal()

	// Signals sent before anyone waits are kept, and coalesce.
	b.Notify("x")
	b.Notify("x")

	ctx := context.Background()
	if err := b.Wait(ctx, "x"); err != nil {
		t.Fatal(err)
	}

	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := b.Wait(ctx2, "x"); err != context.DeadlineExceeded {
		t.Fatalf("got %v, want %v", err, context.DeadlineExceeded)
	}

	done := make(chan error)
	go func() {
		done <- b.Wait(ctx, Service("a"))
	}()
	b.Notify(Service("b"))
	b.Notify(Service("a"))
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for signal")
	}
}

type brokenBus struct {
	calls int
}

func (*brokenBus) Notify(string) {}

func (b *brokenBus) Wait(context.Context, string) error {
	b.calls++
	return errors.New("unreachable")
}

func TestWaiterBacksOff(t *testing.T) {
	bus := &brokenBus{}
	w := NewWaiter(bus, time.Second)
	w.b.InitialInterval = 10 * time.Millisecond
	w.b.Reset()

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := w.Wait(ctx, "x"); err == nil {
			t.Fatal("got no error from a broken bus")
		}
	}

	// Even with randomization the three sleeps take more than 20ms.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("three failing waits took %s, want at least 20ms", elapsed)
	}
	if bus.calls != 3 {
		t.Errorf("got %d calls, want 3", bus.calls)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := w.Wait(ctx, "x"); err != context.Canceled {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}

func TestWaiterPolls(t *testing.T) {
	b := NewLocal()
	w := NewWaiter(b, 20*time.Millisecond)

	ctx := context.Background()
	if err := w.Wait(ctx, "x"); err != nil {
		t.Errorf("got %v after the poll interval, want nil", err)
	}

	w = NewWaiter(b, time.Hour)
	b.Notify("x")
	if err := w.Wait(ctx, "x"); err != nil {
		t.Fatal(err)
	}
}
