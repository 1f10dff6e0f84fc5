package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/meta"
)

type chunksOnly struct{ data []byte }

func (c chunksOnly) GetChunk(_ context.Context, _ *meta.File, offset, size int64) ([]byte, error) {
	if offset >= int64(len(c.data)) {
		return nil, nil
	}
	end := offset + size
	if end > int64(len(c.data)) {
		end = int64(len(c.data))
	}
	return c.data[offset:end], nil
}

type wholeOnly struct{ data []byte }

func (w wholeOnly) GetFile(context.Context, *meta.File) ([]byte, error) { return w.data, nil }

type failing struct{}

func (failing) GetFile(context.Context, *meta.File) ([]byte, error) {
	return nil, driver.DriverErrorf("cannot resolve remote id")
}

var testData = []byte("0123456789abcdefghij")

func lookup(_ context.Context, fid string) (*meta.File, error) {
	if fid != "f1" {
		return nil, meta.ErrNotFound
	}
	return &meta.File{FID: "f1", Filename: "x", Size: int64(len(testData))}, nil
}

func withRouter(t *testing.T, d driver.Driver, fn func(context.Context, *Router)) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New("A", driver.Resolve(d), lookup, driver.DefaultRetry, nil)
	go r.Run(ctx)

	fn(ctx, r)
}

func pull(ctx context.Context, t *testing.T, s Source, req *Request) *Reply {
	reply, err := s.Pull(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	return reply
}

func TestFallbacks(t *testing.T) {
	for _, d := range []driver.Driver{chunksOnly{data: testData}, wholeOnly{data: testData}} {
		withRouter(t, d, func(ctx context.Context, r *Router) {
			reply := pull(ctx, t, r, &Request{Command: GetChunk, FID: "f1", Offset: 15, Size: 10})
			if reply.Status != OK || string(reply.Payload) != "fghij" {
				t.Errorf("%T GET_CHUNK: got %s %q", d, reply.Status, reply.Payload)
			}

			reply = pull(ctx, t, r, &Request{Command: GetChunk, FID: "f1", Offset: 20, Size: 10})
			if reply.Status != OK || len(reply.Payload) != 0 {
				t.Errorf("%T GET_CHUNK past end: got %s %q", d, reply.Status, reply.Payload)
			}

			reply = pull(ctx, t, r, &Request{Command: GetFile, FID: "f1"})
			if reply.Status != OK || string(reply.Payload) != string(testData) {
				t.Errorf("%T GET_FILE: got %s %q", d, reply.Status, reply.Payload)
			}
		})
	}
}

func TestErrorReplies(t *testing.T) {
	cases := []struct {
		name string
		d    driver.Driver
		req  *Request
	}{
		{name: "unknown_fid", d: wholeOnly{}, req: &Request{Command: GetFile, FID: "nope"}},
		{name: "no_fid", d: wholeOnly{}, req: &Request{Command: GetFile}},
		{name: "bad_size", d: wholeOnly{}, req: &Request{Command: GetChunk, FID: "f1", Size: 0}},
		{name: "bad_command", d: wholeOnly{}, req: &Request{Command: "PUT", FID: "f1"}},
		{name: "driver_error", d: failing{}, req: &Request{Command: GetFile, FID: "f1"}},
		{name: "no_reader", d: struct{}{}, req: &Request{Command: GetChunk, FID: "f1", Size: 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			withRouter(t, c.d, func(ctx context.Context, r *Router) {
				reply := pull(ctx, t, r, c.req)
				if reply.Status != Error || reply.Err() == nil {
					t.Errorf("got %s %q, want an error reply", reply.Status, reply.Payload)
				}
			})
		})
	}
}

func TestStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New("A", driver.Resolve(wholeOnly{}), lookup, driver.DefaultRetry, nil)
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_, err := r.Pull(ctx2, &Request{Command: GetFile, FID: "f1"})
	var serr *driver.ServiceError
	if !errors.As(err, &serr) {
		t.Errorf("got %v, want a *driver.ServiceError", err)
	}
}

func TestLocal(t *testing.T) {
	l := NewLocal()
	r := New("A", driver.Resolve(wholeOnly{}), lookup, driver.DefaultRetry, nil)
	l.Add(r)

	ctx := context.Background()
	s, err := l.Dial(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}
	if s != r {
		t.Error("dialed the wrong router")
	}
	if _, err = l.Dial(ctx, "B"); err == nil {
		t.Error("dialed a missing router")
	}
}
