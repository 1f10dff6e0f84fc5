// Package plug connects one service's driver to the hub.
//
// A Plug is the per-service context object:
// it owns the service's store client, driver, options, Router and Dealer,
// and it is the driver.Handle through which the driver reports local changes.
// The Dealer turns events queued for the service into workers
// that move data into the driver.
package plug

import (
	"context"
	stderrs "errors"
	"log"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/folder"
	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/router"
	"github.com/bobg/hub/wake"
)

// Config configures a Plug.
type Config struct {
	// Name is the service name.
	Name string

	Store  kv.Store
	Bus    wake.Bus
	Dialer router.Dialer

	Driver driver.Driver

	// Options are the driver's validated options (see driver.Manifest.Validate).
	// Only driver.ChunkSizeOption is used here.
	Options driver.Options

	// MaxWorkers bounds the number of workers running at once.
	// The default is DefaultMaxWorkers.
	MaxWorkers int

	// Retry is the policy for driver calls failing with *driver.TryAgainError.
	// The zero value means driver.DefaultRetry.
	Retry driver.RetryPolicy

	// PollInterval is how often the Dealer re-reads its queue without being woken.
	// The default is DefaultPollInterval.
	PollInterval time.Duration

	Logger *log.Logger
}

const (
	DefaultMaxWorkers   = 16
	DefaultPollInterval = 30 * time.Second
)

var _ driver.Handle = &Plug{}

// Plug is one service of the hub.
type Plug struct {
	name      string
	store     kv.Store
	bus       wake.Bus
	dialer    router.Dialer
	caps      driver.Caps
	chunkSize int64
	retry     driver.RetryPolicy
	logger    *log.Logger
	folders   []*folder.ServiceFolder

	router *router.Router
	dealer *Dealer
	ready  chan struct{}

	now func() time.Time
}

// New produces a new Plug.
// The service's folders must already be in the store
// (see folder.SaveServiceFolder).
func New(ctx context.Context, conf Config) (*Plug, error) {
	if conf.Name == "" {
		return nil, errors.New("missing service name")
	}
	folders, err := folder.LoadService(ctx, conf.Store, conf.Name)
	if err != nil {
		return nil, err
	}

	p := &Plug{
		name:      conf.Name,
		store:     conf.Store,
		bus:       conf.Bus,
		dialer:    conf.Dialer,
		caps:      driver.Resolve(conf.Driver),
		chunkSize: conf.Options.Int(driver.ChunkSizeOption),
		retry:     conf.Retry,
		logger:    conf.Logger,
		folders:   folders,
		ready:     make(chan struct{}),
		now:       time.Now,
	}
	if p.chunkSize <= 0 {
		p.chunkSize = driver.DefaultChunkSize
	}
	if p.retry == (driver.RetryPolicy{}) {
		p.retry = driver.DefaultRetry
	}
	if p.logger == nil {
		p.logger = log.Default()
	}

	maxWorkers := conf.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	pollInterval := conf.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	p.router = router.New(p.name, p.caps, p.getFile, p.retry, p.logger)
	p.dealer = newDealer(p, maxWorkers, pollInterval)

	return p, nil
}

// Name is the service name.
func (p *Plug) Name() string {
	return p.name
}

// Router is the service's router.
func (p *Plug) Router() *router.Router {
	return p.router
}

// Dealer is the service's dealer.
func (p *Plug) Dealer() *Dealer {
	return p.dealer
}

// Ready is closed once Run has started the driver and resumed interrupted transfers.
func (p *Plug) Ready() <-chan struct{} {
	return p.ready
}

// Run runs the service until ctx is done:
// it starts the router and the driver,
// resumes interrupted transfers,
// then lets the Dealer process events.
// When ctx is done it waits for running workers to unwind
// and closes the driver.
func (p *Plug) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.router.Run(gctx)
	})

	g.Go(func() error {
		if p.caps.Starter != nil {
			if err := p.caps.Starter.Start(gctx, p); err != nil {
				return errors.Wrapf(err, "starting driver of %s", p.name)
			}
		}
		if err := p.dealer.Resume(gctx); err != nil {
			return errors.Wrapf(err, "resuming transfers of %s", p.name)
		}
		close(p.ready)
		return p.dealer.Run(gctx)
	})

	err := g.Wait()
	p.dealer.Wait()

	if p.caps.Closer != nil {
		if cerr := p.caps.Closer.Close(); cerr != nil {
			p.logger.Printf("ERROR %s: closing driver: %s", p.name, cerr)
		}
	}

	if stderrs.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// UpdateFile implements driver.Handle.
// Any transfer of the file into this service is stopped and forgotten,
// the service becomes the file's only up-to-date service,
// and the Referee is told.
func (p *Plug) UpdateFile(ctx context.Context, f *meta.File) error {
	if f.FID == "" {
		f.FID = meta.FID(f.FolderName, f.Filename)
	}
	if f.Mimetype == "" {
		f.Mimetype = meta.GuessMimetype(f.Filename)
	}

	p.dealer.StopTransfer(f.FID)
	if err := meta.DeleteTransfer(ctx, p.store, p.name, f.FID); err != nil {
		return errors.Wrapf(err, "deleting transfer of %s", f.FID)
	}
	if err := meta.WriteUpdate(ctx, p.store, f, p.name, p.now()); err != nil {
		return err
	}
	return p.notifyReferee(ctx, &meta.Change{FID: f.FID, Command: meta.Update, Service: p.name})
}

// DeleteFile implements driver.Handle.
func (p *Plug) DeleteFile(ctx context.Context, f *meta.File) error {
	p.dealer.StopTransfer(f.FID)
	if err := meta.DeleteTransfer(ctx, p.store, p.name, f.FID); err != nil {
		return errors.Wrapf(err, "deleting transfer of %s", f.FID)
	}

	deleted, err := meta.Relinquish(ctx, p.store, f.FID, p.name)
	if err != nil {
		return err
	}
	if deleted {
		// Nobody else has it.
		return nil
	}
	return p.notifyReferee(ctx, &meta.Change{FID: f.FID, Command: meta.Delete, Service: p.name})
}

// MoveFile implements driver.Handle.
func (p *Plug) MoveFile(ctx context.Context, f *meta.File, newPath string) (*meta.File, error) {
	sf := folder.Deepest(p.folders, newPath)
	if sf == nil {
		p.logger.Printf("%s: %s moved out of every folder, treating as deleted", p.name, f.Filename)
		return nil, p.DeleteFile(ctx, f)
	}
	rel, _ := sf.Relpath(newPath)

	if meta.FID(sf.Name, rel) == f.FID {
		// Same folder and filename: nothing to tell the other services.
		f.Path = newPath
		f.Service = p.name
		return f, nil
	}

	nf, err := meta.Clone(ctx, p.store, f, sf.Name, rel)
	if err != nil {
		return nil, err
	}
	nf.Path = newPath
	nf.Service = p.name

	for _, fid := range []string{f.FID, nf.FID} {
		p.dealer.StopTransfer(fid)
		if err = meta.DeleteTransfer(ctx, p.store, p.name, fid); err != nil {
			return nil, errors.Wrapf(err, "deleting transfer of %s", fid)
		}
	}

	if err = meta.WriteUpdate(ctx, p.store, nf, p.name, p.now()); err != nil {
		return nil, err
	}
	if _, err = meta.Relinquish(ctx, p.store, f.FID, p.name); err != nil {
		return nil, err
	}

	err = p.notifyReferee(ctx, &meta.Change{FID: f.FID, Command: meta.Move, Service: p.name, NewFID: nf.FID})
	return nf, err
}

// GetFile implements driver.Handle.
func (p *Plug) GetFile(ctx context.Context, folderName, filename string) (*meta.File, error) {
	return p.getFile(ctx, meta.FID(folderName, filename))
}

// GetFileByPath implements driver.Handle.
func (p *Plug) GetFileByPath(ctx context.Context, path string) (*meta.File, error) {
	sf := folder.Deepest(p.folders, path)
	if sf == nil {
		return nil, meta.ErrNotFound
	}
	rel, _ := sf.Relpath(path)
	return p.GetFile(ctx, sf.Name, rel)
}

// NewFile implements driver.Handle.
func (p *Plug) NewFile(path string, size int64) *meta.File {
	sf := folder.Deepest(p.folders, path)
	if sf == nil {
		return nil
	}
	rel, _ := sf.Relpath(path)
	f := meta.New(sf.Name, rel, size)
	f.Path = path
	f.Service = p.name
	return f
}

// SaveExtra implements driver.Handle.
func (p *Plug) SaveExtra(ctx context.Context, f *meta.File) error {
	b := kv.NewBatch(true)
	if err := meta.PutExtra(b, f, p.name); err != nil {
		return err
	}
	return p.store.Write(ctx, b)
}

// Paths implements driver.Handle.
func (p *Plug) Paths() []string {
	var result []string
	for _, sf := range p.folders {
		result = append(result, sf.Join(""))
	}
	return result
}

// Folders lists the service's views of its folders.
func (p *Plug) Folders() []*folder.ServiceFolder {
	return p.folders
}

// getFile loads a file as this service sees it.
func (p *Plug) getFile(ctx context.Context, fid string) (*meta.File, error) {
	f, err := meta.Get(ctx, p.store, fid, p.name)
	if err != nil {
		return nil, err
	}
	for _, sf := range p.folders {
		if sf.Name == f.FolderName {
			f.Path = sf.Join(f.Filename)
			return f, nil
		}
	}
	return nil, driver.DriverErrorf("service %s does not have folder %s", p.name, f.FolderName)
}

func (p *Plug) notifyReferee(ctx context.Context, c *meta.Change) error {
	if err := meta.PutChange(ctx, p.store, c); err != nil {
		return err
	}
	p.bus.Notify(wake.Referee)
	return nil
}
