// Package rpc carries the chunk-pull protocol over gRPC,
// for workers pulling from a service in another process.
package rpc

import (
	"context"
	stderrs "errors"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/router"
)

var _ RouterServer = &server{}

type server struct {
	UnimplementedRouterServer

	r *router.Router
}

// Register serves r on gs.
// Requests go through r's Run loop,
// which must be running.
func Register(gs *grpc.Server, r *router.Router) {
	RegisterRouterServer(gs, &server{r: r})
}

func (s *server) Pull(ctx context.Context, req *PullRequest) (*PullReply, error) {
	reply, err := s.r.Pull(ctx, &router.Request{
		Command: router.Command(req.Command),
		FID:     req.Fid,
		Offset:  req.Offset,
		Size:    req.Size,
	})
	if err != nil {
		return nil, err
	}
	return &PullReply{Status: string(reply.Status), Payload: reply.Payload}, nil
}

var _ router.Source = &Client{}

// Client is a router.Source on the far side of a gRPC connection.
type Client struct {
	rc RouterClient
}

// NewClient produces a new Client.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rc: NewRouterClient(cc)}
}

// Pull implements router.Source.
// Transport failures are *driver.ServiceError.
func (c *Client) Pull(ctx context.Context, req *router.Request) (*router.Reply, error) {
	resp, err := c.rc.Pull(ctx, &PullRequest{
		Command: string(req.Command),
		Fid:     req.FID,
		Offset:  req.Offset,
		Size:    req.Size,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &driver.ServiceError{Err: err}
	}
	payload := resp.Payload
	if payload == nil {
		payload = []byte{}
	}
	return &router.Reply{Status: router.Status(resp.Status), Payload: payload}, nil
}

// Publish records the address of service's router in the store,
// where a Dialer can find it.
func Publish(ctx context.Context, s kv.Store, service, addr string) error {
	return errors.Wrapf(s.Put(ctx, meta.RouterKey(service), []byte(addr)), "publishing router address of %s", service)
}

var _ router.Dialer = &Dialer{}

// Dialer finds routers through the addresses published in a store.
// It keeps one connection per address.
type Dialer struct {
	Store kv.Store

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// Dial implements router.Dialer.
func (d *Dialer) Dial(ctx context.Context, service string) (router.Source, error) {
	addr, err := d.Store.Get(ctx, meta.RouterKey(service))
	if stderrs.Is(err, kv.ErrNotFound) {
		return nil, &driver.ServiceError{Err: errors.Errorf("no router published for %s", service)}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting router address of %s", service)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conns == nil {
		d.conns = make(map[string]*grpc.ClientConn)
	}
	cc, ok := d.conns[string(addr)]
	if !ok {
		cc, err = grpc.Dial(string(addr), grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, &driver.ServiceError{Err: errors.Wrapf(err, "dialing %s", addr)}
		}
		d.conns[string(addr)] = cc
	}
	return NewClient(cc), nil
}

// Close closes every connection.
func (d *Dialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	for addr, cc := range d.conns {
		if e := cc.Close(); e != nil && err == nil {
			err = e
		}
		delete(d.conns, addr)
	}
	return err
}
