package wake

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Waiter waits on a Bus for a signal or for a poll interval to pass,
// whichever comes first.
// While the Bus fails
// (e.g. a remote bus whose server is unreachable)
// each Wait sleeps for an exponentially growing interval, capped at the poll interval.
type Waiter struct {
	bus  Bus
	poll time.Duration
	b    *backoff.ExponentialBackOff
}

// NewWaiter produces a new Waiter.
func NewWaiter(bus Bus, poll time.Duration) *Waiter {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = poll
	b.MaxElapsedTime = 0
	b.Reset()
	return &Waiter{bus: bus, poll: poll, b: b}
}

// Wait waits for the named signal.
// Running out the poll interval is not an error.
// If the bus fails,
// Wait backs off before returning the bus's error.
// The only other error is ctx's.
func (w *Waiter) Wait(ctx context.Context, name string) error {
	wctx, cancel := context.WithTimeout(ctx, w.poll)
	defer cancel()

	err := w.bus.Wait(wctx, name)
	if err == nil || wctx.Err() != nil {
		w.b.Reset()
		return ctx.Err()
	}

	t := time.NewTimer(w.b.NextBackOff())
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return err
	}
}
