package plug

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/wake"
)

// Dealer turns a service's queued events into workers.
// At most one worker per file is alive at a time:
// before a worker for a file starts,
// any earlier worker for the same file is stopped and waited for.
type Dealer struct {
	p            *Plug
	sem          *semaphore.Weighted
	pollInterval time.Duration

	dispatchMu sync.Mutex // serializes dispatch

	mu         sync.Mutex
	inProgress map[string]*worker // fid -> worker

	wg sync.WaitGroup
}

type worker struct {
	fid      string
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (w *worker) stopped() bool {
	select {
	case <-w.stop:
		return true
	default:
		return false
	}
}

func (w *worker) requestStop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func newDealer(p *Plug, maxWorkers int, pollInterval time.Duration) *Dealer {
	return &Dealer{
		p:            p,
		sem:          semaphore.NewWeighted(int64(maxWorkers)),
		pollInterval: pollInterval,
		inProgress:   make(map[string]*worker),
	}
}

// Run processes the service's queue until ctx is done.
// It drains the queue each time the service is woken,
// and at least once per poll interval.
func (d *Dealer) Run(ctx context.Context) error {
	var (
		name = wake.Service(d.p.name)
		w    = wake.NewWaiter(d.p.bus, d.pollInterval)
	)
	for {
		if err := d.Drain(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.p.logger.Printf("ERROR %s: draining events: %s", d.p.name, err)
		}

		if err := w.Wait(ctx, name); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.p.logger.Printf("ERROR %s: waiting for events: %s", d.p.name, err)
		}
	}
}

// Drain takes every pending event from the service's queue
// and dispatches a worker for each.
// Superseded events (an older event for a file with a newer one queued) are discarded.
func (d *Dealer) Drain(ctx context.Context) error {
	events, keys, err := meta.PendingEvents(ctx, d.p.store, d.p.name)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		b := kv.NewBatch(false)
		for _, key := range keys {
			b.Delete(key)
		}
		if err = d.p.store.Write(ctx, b); err != nil {
			return err
		}
	}
	for _, ev := range events {
		d.dispatch(ctx, ev, nil)
	}
	return nil
}

// Resume dispatches a transfer worker for each of the service's persisted transfer records,
// continuing from the recorded offset.
func (d *Dealer) Resume(ctx context.Context) error {
	transfers, err := meta.Transfers(ctx, d.p.store, d.p.name)
	if err != nil {
		return err
	}
	for _, t := range transfers {
		d.p.logger.Printf("%s: resuming transfer of %s from %s at offset %d", d.p.name, t.FID, t.Source, t.Offset)
		d.dispatch(ctx, &meta.Event{FID: t.FID, Command: meta.Update, Source: t.Source}, t)
	}
	return nil
}

// StopTransfer stops the worker for fid, if any, and waits for it to finish.
// It reports whether there was one.
func (d *Dealer) StopTransfer(fid string) bool {
	d.mu.Lock()
	w := d.inProgress[fid]
	d.mu.Unlock()

	if w == nil {
		return false
	}
	w.requestStop()
	<-w.done
	return true
}

// Active is the number of workers alive.
func (d *Dealer) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inProgress)
}

// Wait waits for every worker to finish.
func (d *Dealer) Wait() {
	d.wg.Wait()
}

func (d *Dealer) dispatch(ctx context.Context, ev *meta.Event, resume *meta.Transfer) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	d.StopTransfer(ev.FID)

	w := &worker{
		fid:  ev.FID,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	d.mu.Lock()
	d.inProgress[ev.FID] = w
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(w.done)
		defer d.remove(w)

		if err := d.acquire(ctx, w); err != nil {
			return
		}
		defer d.sem.Release(1)

		if w.stopped() {
			return
		}

		defer func() {
			if r := recover(); r != nil {
				d.p.logger.Printf("ERROR %s of %s in %s panicked: %v", ev.Command, ev.FID, d.p.name, r)
			}
		}()

		switch ev.Command {
		case meta.Update:
			d.p.transfer(ctx, w, ev.FID, ev.Source, resume)
		case meta.Delete:
			d.p.deletion(ctx, w, ev)
		case meta.Move:
			d.p.move(ctx, w, ev)
		}
	}()
}

// acquire waits for a worker slot,
// giving up if ctx is done or w is stopped first.
func (d *Dealer) acquire(ctx context.Context, w *worker) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	return d.sem.Acquire(ctx, 1)
}

func (d *Dealer) remove(w *worker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inProgress[w.fid] == w {
		delete(d.inProgress, w.fid)
	}
}
