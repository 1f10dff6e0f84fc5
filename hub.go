package hub

import (
	"context"
	stderrs "errors"
	"log"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/plug"
	"github.com/bobg/hub/referee"
	"github.com/bobg/hub/router"
	"github.com/bobg/hub/wake"
)

// Hub is a whole deployment in one process:
// a Referee and every configured service,
// sharing one metadata store and one wake bus,
// with routers reachable in-process.
type Hub struct {
	Store   kv.Store
	Bus     wake.Bus
	Referee *referee.Referee

	plugs   map[string]*plug.Plug
	names   []string
	routers *router.Local
	logger  *log.Logger
}

// New assembles a Hub from conf, using s for metadata.
// It writes the folder configuration to s
// and creates each service's adapter.
// Nothing runs until Run is called.
func New(ctx context.Context, s kv.Store, conf *Config, logger *log.Logger) (*Hub, error) {
	if logger == nil {
		logger = log.Default()
	}

	opts, err := conf.Check()
	if err != nil {
		return nil, err
	}
	if err = Setup(ctx, s, conf); err != nil {
		return nil, errors.Wrap(err, "writing folder configuration")
	}

	bus := wake.NewLocal()
	h := &Hub{
		Store:   s,
		Bus:     bus,
		Referee: referee.New(s, bus, logger),
		plugs:   make(map[string]*plug.Plug),
		names:   conf.ServiceNames(),
		routers: router.NewLocal(),
		logger:  logger,
	}

	for _, name := range h.names {
		sc := conf.Services[name]

		d := sc.Instance
		if d == nil {
			d, _, err = driver.Create(ctx, sc.Driver, sc.Options)
			if err != nil {
				return nil, errors.Wrapf(err, "service %s", name)
			}
		}

		p, err := plug.New(ctx, plug.Config{
			Name:       name,
			Store:      s,
			Bus:        bus,
			Dialer:     h.routers,
			Driver:     d,
			Options:    opts[name],
			MaxWorkers: conf.MaxWorkers,
			Logger:     logger,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "service %s", name)
		}
		h.plugs[name] = p
		h.routers.Add(p.Router())
	}

	return h, nil
}

// Plug returns the named service, or nil.
func (h *Hub) Plug(name string) *plug.Plug {
	return h.plugs[name]
}

// Run runs the Referee and every service until ctx is done
// or one of them fails.
func (h *Hub) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return h.Referee.Run(gctx)
	})
	for _, name := range h.names {
		p := h.plugs[name]
		g.Go(func() error {
			return errors.Wrapf(p.Run(gctx), "running service %s", p.Name())
		})
	}

	err := g.Wait()
	if stderrs.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Ready waits until every service is ready (see plug.Plug.Ready).
func (h *Hub) Ready(ctx context.Context) error {
	for _, name := range h.names {
		select {
		case <-h.plugs[name].Ready():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
