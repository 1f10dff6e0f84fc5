// Package referee implements the Referee,
// the single consumer of local changes reported by services.
//
// For each change the Referee applies the folder rules
// to decide which services must act,
// queues one event per such service,
// and wakes them.
package referee

import (
	"context"
	stderrs "errors"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/hub/folder"
	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/wake"
)

// DefaultPollInterval is how often Run re-reads the change queue without being woken.
const DefaultPollInterval = 30 * time.Second

// Referee routes changes to services.
// Only one Referee may run per deployment.
type Referee struct {
	store        kv.Store
	bus          wake.Bus
	logger       *log.Logger
	PollInterval time.Duration
}

// New produces a new Referee.
func New(s kv.Store, bus wake.Bus, logger *log.Logger) *Referee {
	if logger == nil {
		logger = log.Default()
	}
	return &Referee{
		store:        s,
		bus:          bus,
		logger:       logger,
		PollInterval: DefaultPollInterval,
	}
}

// Run drains the change queue each time the Referee is woken,
// and at least once per poll interval,
// until ctx is done.
func (r *Referee) Run(ctx context.Context) error {
	w := wake.NewWaiter(r.bus, r.PollInterval)
	for {
		if err := r.Drain(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Printf("ERROR referee: %s", err)
		}

		if err := w.Wait(ctx, wake.Referee); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Printf("ERROR referee: waiting for changes: %s", err)
		}
	}
}

// Drain handles every queued change in arrival order,
// deleting each one once handled.
// Malformed changes and changes of unknown files are logged and dropped.
// On a store error Drain stops,
// leaving the change in the queue for the next attempt.
func (r *Referee) Drain(ctx context.Context) error {
	changes, err := meta.Changes(ctx, r.store)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	folders, err := folder.Load(ctx, r.store)
	if err != nil {
		return err
	}

	woken := make(map[string]bool)
	defer func() {
		for svc := range woken {
			r.bus.Notify(wake.Service(svc))
		}
	}()

	for _, c := range changes {
		if c.Malformed {
			r.logger.Printf("ERROR referee: dropping malformed change %s", c.ID)
		} else {
			services, err := r.handle(ctx, folders, c)
			if err != nil {
				return errors.Wrapf(err, "handling %s of %s from %s", c.Command, c.FID, c.Service)
			}
			for _, svc := range services {
				woken[svc] = true
			}
		}
		if err = meta.DeleteChange(ctx, r.store, c.ID); err != nil {
			return errors.Wrapf(err, "deleting change %s", c.ID)
		}
	}
	return nil
}

// handle queues the events for one change
// and returns the services it queued them for.
func (r *Referee) handle(ctx context.Context, folders map[string]*folder.Folder, c *meta.Change) ([]string, error) {
	switch c.Command {
	case meta.Update:
		return r.update(ctx, folders, c)
	case meta.Delete:
		return r.delete(ctx, c)
	case meta.Move:
		return r.move(ctx, folders, c)
	}
	return nil, nil
}

// load loads a file record, reporting nil if it does not exist.
func (r *Referee) load(ctx context.Context, fid string) (*meta.File, error) {
	f, err := meta.Get(ctx, r.store, fid, "")
	if stderrs.Is(err, meta.ErrNotFound) {
		return nil, nil
	}
	return f, err
}

func (r *Referee) targets(folders map[string]*folder.Folder, f *meta.File, source string) []string {
	fo, ok := folders[f.FolderName]
	if !ok {
		r.logger.Printf("ERROR referee: %s is in unknown folder %s", f.Filename, f.FolderName)
		return nil
	}
	targets, reason := fo.Targets(f, source)
	if reason != folder.OK {
		r.logger.Printf("referee: not forwarding %s/%s from %s: %s", f.FolderName, f.Filename, source, reason)
	}
	return targets
}

func (r *Referee) update(ctx context.Context, folders map[string]*folder.Folder, c *meta.Change) ([]string, error) {
	f, err := r.load(ctx, c.FID)
	if err != nil || f == nil {
		if f == nil && err == nil {
			r.logger.Printf("referee: dropping %s of unknown file %s", c.Command, c.FID)
		}
		return nil, err
	}

	targets := r.targets(folders, f, c.Service)
	if len(targets) == 0 {
		return nil, nil
	}

	b := kv.NewBatch(true)
	for _, t := range targets {
		if !f.Owners[t] {
			meta.PutOwner(b, f.FID, t)
		}
		if err = meta.PutEvent(b, t, &meta.Event{FID: f.FID, Command: meta.Update, Source: c.Service}); err != nil {
			return nil, err
		}
	}
	r.logger.Printf("referee: %s/%s updated by %s, forwarding to %v", f.FolderName, f.Filename, c.Service, targets)
	return targets, r.store.Write(ctx, b)
}

func (r *Referee) delete(ctx context.Context, c *meta.Change) ([]string, error) {
	f, err := r.load(ctx, c.FID)
	if err != nil || f == nil {
		if f == nil && err == nil {
			r.logger.Printf("referee: dropping %s of unknown file %s", c.Command, c.FID)
		}
		return nil, err
	}

	var (
		b        = kv.NewBatch(true)
		services []string
	)
	for _, owner := range f.OwnerList() {
		if owner == c.Service {
			continue
		}
		if err = meta.PutEvent(b, owner, &meta.Event{FID: f.FID, Command: meta.Delete, Source: c.Service}); err != nil {
			return nil, err
		}
		services = append(services, owner)
	}
	if len(services) == 0 {
		return nil, nil
	}
	r.logger.Printf("referee: %s/%s deleted by %s, forwarding to %v", f.FolderName, f.Filename, c.Service, services)
	return services, r.store.Write(ctx, b)
}

// move forwards a rename.
// Services holding the old file up to date, and allowed the new one, rename it.
// Other targets of the new file receive it as an update.
// Services left with a copy of the old file that they may not or need not rename delete it.
func (r *Referee) move(ctx context.Context, folders map[string]*folder.Folder, c *meta.Change) ([]string, error) {
	nf, err := r.load(ctx, c.NewFID)
	if err != nil || nf == nil {
		if nf == nil && err == nil {
			r.logger.Printf("referee: dropping %s of unknown file %s", c.Command, c.NewFID)
		}
		return nil, err
	}
	old, err := r.load(ctx, c.FID)
	if err != nil {
		return nil, err
	}
	if old == nil {
		old = &meta.File{FID: c.FID}
	}

	var (
		b        = kv.NewBatch(true)
		queued   = make(map[string]bool)
		services []string
	)
	queue := func(svc string, ev *meta.Event) error {
		if !queued[svc] {
			queued[svc] = true
			services = append(services, svc)
		}
		return meta.PutEvent(b, svc, ev)
	}

	isTarget := make(map[string]bool)
	for _, t := range r.targets(folders, nf, c.Service) {
		isTarget[t] = true
		if !nf.Owners[t] {
			meta.PutOwner(b, nf.FID, t)
		}
		ev := &meta.Event{FID: nf.FID, Command: meta.Update, Source: c.Service}
		if old.IsUptodate(t) {
			ev = &meta.Event{FID: old.FID, Command: meta.Move, Source: c.Service, NewFID: nf.FID}
		}
		if err = queue(t, ev); err != nil {
			return nil, err
		}
	}

	for _, owner := range old.OwnerList() {
		if owner == c.Service || (isTarget[owner] && old.IsUptodate(owner)) {
			continue
		}
		if err = queue(owner, &meta.Event{FID: old.FID, Command: meta.Delete, Source: c.Service}); err != nil {
			return nil, err
		}
	}

	if len(services) == 0 {
		return nil, nil
	}
	r.logger.Printf("referee: %s/%s moved to %s/%s by %s, forwarding to %v", old.FolderName, old.Filename, nf.FolderName, nf.Filename, c.Service, services)
	return services, r.store.Write(ctx, b)
}
