package main

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/bobg/hub"
	"github.com/bobg/hub/kv/rpc"
	"github.com/bobg/hub/wake"
)

func (c maincmd) serve(ctx context.Context, _ []string) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	h, err := hub.New(ctx, s, c.conf, nil)
	if err != nil {
		return errors.Wrap(err, "assembling hub")
	}
	return h.Run(ctx)
}

// store serves the metadata store and a wake bus over gRPC,
// for a deployment whose parts run in separate processes.
func (c maincmd) store(ctx context.Context, addr string, _ []string) error {
	if addr == "" {
		return errors.New("no listen address (set -addr or `listen` in the config)")
	}

	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	if err = hub.Setup(ctx, s, c.conf); err != nil {
		return errors.Wrap(err, "writing folder configuration")
	}

	gs := grpc.NewServer()
	rpc.Register(gs, rpc.NewServer(s, wake.NewLocal()))

	return serveGRPC(ctx, gs, addr)
}

// serveGRPC serves gs on addr until ctx is done.
func serveGRPC(ctx context.Context, gs *grpc.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	defer lis.Close()

	fmt.Printf("Listening on %s\n", lis.Addr())

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	return gs.Serve(lis)
}
