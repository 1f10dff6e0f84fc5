// Package rpc exposes a kv.Store and a wake.Bus over gRPC,
// so that the Referee and each service may run in separate processes
// sharing one metadata store.
package rpc

import (
	"context"
	stderrs "errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/wake"
)

var _ StoreServer = &Server{}

// Server serves a kv.Store and a wake.Bus.
type Server struct {
	UnimplementedStoreServer

	s   kv.Store
	bus wake.Bus
}

// NewServer produces a new Server.
func NewServer(s kv.Store, bus wake.Bus) *Server {
	return &Server{s: s, bus: bus}
}

// Register registers srv with gs.
func Register(gs *grpc.Server, srv *Server) {
	RegisterStoreServer(gs, srv)
}

func toStatus(err error) error {
	if stderrs.Is(err, kv.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return err
}

func (s *Server) Get(ctx context.Context, req *KeyRequest) (*GetResponse, error) {
	v, err := s.s.Get(ctx, req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetResponse{Value: v}, nil
}

func (s *Server) Exists(ctx context.Context, req *KeyRequest) (*ExistsResponse, error) {
	ok, err := s.s.Exists(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	return &ExistsResponse{Exists: ok}, nil
}

func (s *Server) Put(ctx context.Context, req *PutRequest) (*Empty, error) {
	value := req.Value
	if value == nil {
		value = []byte{}
	}
	return &Empty{}, s.s.Put(ctx, req.Key, value)
}

func (s *Server) Delete(ctx context.Context, req *KeyRequest) (*Empty, error) {
	return &Empty{}, s.s.Delete(ctx, req.Key)
}

func (s *Server) Write(ctx context.Context, req *WriteRequest) (*Empty, error) {
	b := kv.NewBatch(req.Atomic)
	for _, op := range req.Ops {
		if op.Delete {
			b.Delete(op.Key)
		} else {
			b.Put(op.Key, op.Value)
		}
	}
	return &Empty{}, s.s.Write(ctx, b)
}

func (s *Server) Notify(_ context.Context, req *SignalRequest) (*Empty, error) {
	s.bus.Notify(req.Name)
	return &Empty{}, nil
}

// Wait is a long poll.
// It returns when the signal arrives or when the client gives up.
func (s *Server) Wait(ctx context.Context, req *SignalRequest) (*Empty, error) {
	if err := s.bus.Wait(ctx, req.Name); err != nil {
		return nil, status.Error(codes.Canceled, err.Error())
	}
	return &Empty{}, nil
}

func (s *Server) Range(req *RangeRequest, srv Store_RangeServer) error {
	r := kv.Range{
		Prefix:   req.Prefix,
		Start:    req.Start,
		Stop:     req.Stop,
		KeysOnly: req.KeysOnly,
		Reverse:  req.Reverse,
	}
	return s.s.Range(srv.Context(), r, func(key string, value []byte) error {
		return srv.Send(&Pair{Key: key, Value: value})
	})
}
