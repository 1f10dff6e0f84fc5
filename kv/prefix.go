package kv

import (
	"context"
	"strings"
)

var _ Store = &PrefixStore{}

// PrefixStore is a prefix-scoped client:
// every key passed to it is transparently prefixed,
// and every key it returns has the prefix stripped.
type PrefixStore struct {
	s      Store
	prefix string
}

// Prefixed produces a PrefixStore over s.
func Prefixed(s Store, prefix string) *PrefixStore {
	if p, ok := s.(*PrefixStore); ok {
		return &PrefixStore{s: p.s, prefix: p.prefix + prefix}
	}
	return &PrefixStore{s: s, prefix: prefix}
}

func (p *PrefixStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.s.Get(ctx, p.prefix+key)
}

func (p *PrefixStore) Exists(ctx context.Context, key string) (bool, error) {
	return p.s.Exists(ctx, p.prefix+key)
}

func (p *PrefixStore) Put(ctx context.Context, key string, value []byte) error {
	return p.s.Put(ctx, p.prefix+key, value)
}

func (p *PrefixStore) Delete(ctx context.Context, key string) error {
	return p.s.Delete(ctx, p.prefix+key)
}

func (p *PrefixStore) Range(ctx context.Context, r Range, f func(string, []byte) error) error {
	r.Prefix = p.prefix + r.Prefix
	if r.Start != "" {
		r.Start = p.prefix + r.Start
	}
	if r.Stop != "" {
		r.Stop = p.prefix + r.Stop
	}
	return p.s.Range(ctx, r, func(key string, value []byte) error {
		return f(strings.TrimPrefix(key, p.prefix), value)
	})
}

func (p *PrefixStore) Write(ctx context.Context, b *Batch) error {
	pb := &Batch{Atomic: b.Atomic, Ops: make([]Op, 0, len(b.Ops))}
	for _, op := range b.Ops {
		pb.Ops = append(pb.Ops, Op{Key: p.prefix + op.Key, Value: op.Value})
	}
	return p.s.Write(ctx, pb)
}
