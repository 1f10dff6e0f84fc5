// Package wake implements the hub's event notification signal.
//
// A signal carries no payload.
// It only tells a consumer that something it cares about may have changed in the metadata store,
// so consumers always re-read the store after waking.
// Signals sent while nobody is waiting coalesce into one.
package wake

import (
	"context"
	"sync"
)

// Bus delivers edge-triggered, payload-free signals addressed by name.
type Bus interface {
	// Notify signals name.
	// It never blocks.
	Notify(name string)

	// Wait blocks until name is signaled or ctx is done.
	Wait(ctx context.Context, name string) error
}

// Referee is the name the Referee waits on.
const Referee = "referee"

// Service is the name the Dealer of the given service waits on.
func Service(name string) string {
	return "service:" + name
}

var _ Bus = &Local{}

// Local is an in-process Bus.
type Local struct {
	mu    sync.Mutex
	chans map[string]chan struct{}
}

// NewLocal produces a new Local bus.
func NewLocal() *Local {
	return &Local{chans: make(map[string]chan struct{})}
}

func (l *Local) ch(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.chans[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.chans[name] = ch
	}
	return ch
}

// Notify implements Bus.
func (l *Local) Notify(name string) {
	select {
	case l.ch(name) <- struct{}{}:
	default:
	}
}

// Wait implements Bus.
func (l *Local) Wait(ctx context.Context, name string) error {
	select {
	case <-l.ch(name):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
