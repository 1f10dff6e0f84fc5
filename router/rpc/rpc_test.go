package rpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/kv/mem"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/router"
)

type whole struct{}

func (whole) GetFile(context.Context, *meta.File) ([]byte, error) { return []byte("hello"), nil }

func TestPull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lookup := func(_ context.Context, fid string) (*meta.File, error) {
		if fid != "f1" {
			return nil, meta.ErrNotFound
		}
		return &meta.File{FID: fid, Size: 5}, nil
	}
	r := router.New("A", driver.Resolve(whole{}), lookup, driver.DefaultRetry, nil)
	go r.Run(ctx)

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	gs := grpc.NewServer()
	Register(gs, r)
	go gs.Serve(lis)
	defer gs.Stop()

	store := mem.New()
	if err = Publish(ctx, store, "A", lis.Addr().String()); err != nil {
		t.Fatal(err)
	}

	d := &Dialer{Store: store}
	defer d.Close()

	src, err := d.Dial(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}

	reply, err := src.Pull(ctx, &router.Request{Command: router.GetChunk, FID: "f1", Offset: 1, Size: 3})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Status != router.OK || string(reply.Payload) != "ell" {
		t.Errorf("got %s %q, want OK \"ell\"", reply.Status, reply.Payload)
	}

	reply, err = src.Pull(ctx, &router.Request{Command: router.GetFile, FID: "f2"})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Status != router.Error {
		t.Errorf("got %s, want ERROR", reply.Status)
	}

	if _, err = d.Dial(ctx, "B"); err == nil {
		t.Error("dialed an unpublished service")
	}
}
