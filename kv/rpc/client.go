package rpc

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/wake"
)

var (
	_ kv.Store = &Client{}
	_ wake.Bus = &Client{}
)

const notifyTimeout = 10 * time.Second

// Client is the client side of Server.
// It is both a kv.Store and a wake.Bus.
type Client struct {
	sc StoreClient
}

// NewClient produces a new Client.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{sc: NewStoreClient(cc)}
}

// Dial connects to a Server at addr without transport security.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	return grpc.Dial(addr, opts...)
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.sc.Get(ctx, &KeyRequest{Key: key})
	if code := status.Code(err); code == codes.NotFound {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if resp.Value == nil {
		return []byte{}, nil
	}
	return resp.Value, nil
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := c.sc.Exists(ctx, &KeyRequest{Key: key})
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.sc.Put(ctx, &PutRequest{Key: key, Value: value})
	return err
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.sc.Delete(ctx, &KeyRequest{Key: key})
	return err
}

func (c *Client) Write(ctx context.Context, b *kv.Batch) error {
	req := &WriteRequest{Atomic: b.Atomic}
	for _, op := range b.Ops {
		req.Ops = append(req.Ops, &Op{Key: op.Key, Value: op.Value, Delete: op.Delete()})
	}
	_, err := c.sc.Write(ctx, req)
	return err
}

func (c *Client) Range(ctx context.Context, r kv.Range, f func(string, []byte) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rc, err := c.sc.Range(ctx, &RangeRequest{
		Prefix:   r.Prefix,
		Start:    r.Start,
		Stop:     r.Stop,
		KeysOnly: r.KeysOnly,
		Reverse:  r.Reverse,
	})
	if err != nil {
		return errors.Wrap(err, "opening stream")
	}

	// Collect first, so f may call back into the store.
	var pairs []*Pair
	for {
		p, err := rc.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "receiving response")
		}
		if !r.KeysOnly && p.Value == nil {
			p.Value = []byte{}
		}
		pairs = append(pairs, p)
	}
	for _, p := range pairs {
		if err := f(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// Notify implements wake.Bus.
func (c *Client) Notify(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	// A lost signal is repaired by the next one,
	// and consumers re-read the store on every wakeup.
	_, _ = c.sc.Notify(ctx, &SignalRequest{Name: name})
}

// Wait implements wake.Bus.
func (c *Client) Wait(ctx context.Context, name string) error {
	_, err := c.sc.Wait(ctx, &SignalRequest{Name: name})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func init() {
	kv.Register("rpc", func(ctx context.Context, conf map[string]interface{}) (kv.Store, error) {
		addr, ok := conf["addr"].(string)
		if !ok {
			return nil, errors.New(`missing "addr" parameter`)
		}
		cc, err := Dial(addr)
		if err != nil {
			return nil, errors.Wrapf(err, "dialing %s", addr)
		}
		return NewClient(cc), nil
	})
}
