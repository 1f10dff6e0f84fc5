// Package router implements the per-service responder to chunk and file pull requests,
// and the protocol remote workers use to talk to it.
package router

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/meta"
)

// Command is a pull request kind.
type Command string

const (
	GetChunk Command = "GET_CHUNK"
	GetFile  Command = "GET_FILE"
)

// Status is the outcome of a pull request.
type Status string

const (
	OK    Status = "OK"
	Error Status = "ERROR"
)

// Request asks a router for file content.
type Request struct {
	Command Command `json:"command"`
	FID     string  `json:"fid"`
	Offset  int64   `json:"offset,omitempty"`
	Size    int64   `json:"size,omitempty"`
}

// Reply answers a Request.
// On error, Payload holds the message.
type Reply struct {
	Status  Status `json:"status"`
	Payload []byte `json:"payload"`
}

// Err converts an error reply to an error.
func (r *Reply) Err() error {
	if r.Status == OK {
		return nil
	}
	return fmt.Errorf("router error: %s", r.Payload)
}

func errorReply(format string, args ...interface{}) *Reply {
	return &Reply{Status: Error, Payload: []byte(fmt.Sprintf(format, args...))}
}

// Source is where a worker pulls file content from.
// An error means the source could not be reached;
// a reply with status Error means it was reached and refused.
type Source interface {
	Pull(ctx context.Context, req *Request) (*Reply, error)
}

// Dialer locates the Source of a named service.
type Dialer interface {
	Dial(ctx context.Context, service string) (Source, error)
}

// Lookup finds a file by id, as seen by the router's own service.
type Lookup func(ctx context.Context, fid string) (*meta.File, error)

var _ Source = &Router{}

// Router serves pull requests for one service.
// Requests are handled one at a time,
// since adapters need not be reentrant on read.
type Router struct {
	name   string
	caps   driver.Caps
	lookup Lookup
	retry  driver.RetryPolicy
	logger *log.Logger

	calls chan call
	done  chan struct{}
}

type call struct {
	ctx   context.Context
	req   *Request
	reply chan<- *Reply
}

// New produces a new Router for the named service.
// It serves nothing until Run is called.
func New(name string, caps driver.Caps, lookup Lookup, retry driver.RetryPolicy, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{
		name:   name,
		caps:   caps,
		lookup: lookup,
		retry:  retry,
		logger: logger,
		calls:  make(chan call),
		done:   make(chan struct{}),
	}
}

// Name is the name of the router's service.
func (r *Router) Name() string {
	return r.name
}

// Run serves requests until ctx is done.
func (r *Router) Run(ctx context.Context) error {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.logger.Printf("Router %s: context canceled, exiting", r.name)
			return ctx.Err()

		case c := <-r.calls:
			reply := r.Handle(c.ctx, c.req)
			c.reply <- reply
		}
	}
}

// Pull queues req for the Run loop and waits for the reply.
func (r *Router) Pull(ctx context.Context, req *Request) (*Reply, error) {
	ch := make(chan *Reply, 1)
	select {
	case r.calls <- call{ctx: ctx, req: req, reply: ch}:
	case <-r.done:
		return nil, &driver.ServiceError{Err: errors.Errorf("router %s stopped", r.name)}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Handle serves one request.
// Run calls it serially;
// transports that bypass Run must serialize calls themselves.
func (r *Router) Handle(ctx context.Context, req *Request) *Reply {
	if req == nil || req.FID == "" {
		return errorReply("malformed request")
	}
	if req.Command == GetChunk && (req.Offset < 0 || req.Size <= 0) {
		return errorReply("malformed request: offset %d, size %d", req.Offset, req.Size)
	}

	f, err := r.lookup(ctx, req.FID)
	if err != nil {
		r.logger.Printf("ERROR Router %s: looking up %s: %s", r.name, req.FID, err)
		return errorReply("looking up %s: %s", req.FID, err)
	}

	var data []byte
	err = r.retry.Call(ctx, func() (err error) {
		switch req.Command {
		case GetChunk:
			data, err = r.getChunk(ctx, f, req.Offset, req.Size)
		case GetFile:
			data, err = r.getFile(ctx, f)
		default:
			err = errors.Errorf("unknown command %q", req.Command)
		}
		return err
	})
	if err != nil {
		r.logger.Printf("ERROR Router %s: %s %s (%s): %s", r.name, req.Command, f.Filename, f.FID, err)
		return errorReply("%s", err)
	}
	if data == nil {
		data = []byte{}
	}
	return &Reply{Status: OK, Payload: data}
}

func (r *Router) getChunk(ctx context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	if r.caps.ChunkReader != nil {
		return r.caps.ChunkReader.GetChunk(ctx, f, offset, size)
	}
	if r.caps.FileReader == nil {
		return nil, errors.New("service cannot provide files")
	}
	data, err := r.caps.FileReader.GetFile(ctx, f)
	if err != nil {
		return nil, err
	}
	if offset >= int64(len(data)) {
		return []byte{}, nil
	}
	end := offset + size
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end], nil
}

func (r *Router) getFile(ctx context.Context, f *meta.File) ([]byte, error) {
	if r.caps.FileReader != nil {
		return r.caps.FileReader.GetFile(ctx, f)
	}
	if r.caps.ChunkReader == nil {
		return nil, errors.New("service cannot provide files")
	}
	return r.caps.ChunkReader.GetChunk(ctx, f, 0, f.Size)
}
