package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"

	"github.com/bobg/hub/kv/kvtest"
	"github.com/bobg/hub/kv/mem"
	"github.com/bobg/hub/wake"
)

func TestRPC(t *testing.T) {
	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}

	gs := grpc.NewServer()
	Register(gs, NewServer(mem.New(), wake.NewLocal()))
	go gs.Serve(lis)
	defer gs.Stop()

	cc, err := Dial(lis.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer cc.Close()

	c := NewClient(cc)
	ctx := context.Background()

	kvtest.Store(ctx, t, c)

	t.Run("wake", func(t *testing.T) {
		done := make(chan error)
		go func() {
			done <- c.Wait(ctx, "x")
		}()

		// Notify until the waiter sees it;
		// the first signal may be consumed before the Wait call reaches the server,
		// in which case the waiter still wakes up immediately.
		deadline := time.After(5 * time.Second)
		for {
			c.Notify("x")
			select {
			case err := <-done:
				if err != nil {
					t.Fatal(err)
				}
				return
			case <-time.After(50 * time.Millisecond):
			case <-deadline:
				t.Fatal("timed out")
			}
		}
	})
}
