package main

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/plug"
	routerrpc "github.com/bobg/hub/router/rpc"
)

// service runs one service,
// serving its router over gRPC and publishing the router's address in the store.
func (c maincmd) service(ctx context.Context, addr string, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: service [-addr ADDR] NAME")
	}
	name := args[0]

	sc, ok := c.conf.Services[name]
	if !ok {
		return errors.Errorf("service %s not in config", name)
	}
	if addr == "" {
		addr = sc.Listen
	}
	if addr == "" {
		return errors.Errorf("no router address for %s (set -addr or its `listen` in the config)", name)
	}

	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	bus, err := busFor(s)
	if err != nil {
		return err
	}

	d, opts, err := driver.Create(ctx, sc.Driver, sc.Options)
	if err != nil {
		return errors.Wrapf(err, "creating driver of %s", name)
	}

	dialer := &routerrpc.Dialer{Store: s}
	defer dialer.Close()

	p, err := plug.New(ctx, plug.Config{
		Name:       name,
		Store:      s,
		Bus:        bus,
		Dialer:     dialer,
		Driver:     d,
		Options:    opts,
		MaxWorkers: c.conf.MaxWorkers,
	})
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	defer lis.Close()

	if err = routerrpc.Publish(ctx, s, name, lis.Addr().String()); err != nil {
		return err
	}

	gs := grpc.NewServer()
	routerrpc.Register(gs, p.Router())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gs.Serve(lis)
	})
	g.Go(func() error {
		defer gs.GracefulStop()
		return p.Run(gctx)
	})
	return g.Wait()
}
