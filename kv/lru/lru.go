// Package lru implements a metadata store that acts as a least-recently-used read cache for a nested store.
package lru

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
)

var _ kv.Store = &Store{}

// Store implements a memory-based least-recently-used cache for a kv.Store.
// It caches values read with Get.
// Writes pass through to the underlying store and update the cache.
// Range always goes to the underlying store.
//
// The cache is only coherent when every writer of the underlying store goes through this Store.
type Store struct {
	c *lru.Cache // key->[]byte
	s kv.Store
}

// New produces a new Store backed by `s` and caching up to `size` values.
func New(s kv.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// Get gets the value at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if got, ok := s.c.Get(key); ok {
		return append([]byte{}, got.([]byte)...), nil
	}
	v, err := s.s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.c.Add(key, append([]byte{}, v...))
	return v, nil
}

// Exists tells whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if s.c.Contains(key) {
		return true, nil
	}
	return s.s.Exists(ctx, key)
}

// Put stores value at key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.s.Put(ctx, key, value); err != nil {
		s.c.Remove(key)
		return err
	}
	s.c.Add(key, append([]byte{}, value...))
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.c.Remove(key)
	return s.s.Delete(ctx, key)
}

// Range passes through to the underlying store.
func (s *Store) Range(ctx context.Context, r kv.Range, f func(string, []byte) error) error {
	return s.s.Range(ctx, r, f)
}

// Write commits a batch to the underlying store, then updates the cache.
func (s *Store) Write(ctx context.Context, b *kv.Batch) error {
	err := s.s.Write(ctx, b)
	for _, op := range b.Ops {
		if err != nil || op.Delete() {
			s.c.Remove(op.Key)
		} else {
			s.c.Add(op.Key, append([]byte{}, op.Value...))
		}
	}
	return err
}

// Purge empties the cache.
func (s *Store) Purge() {
	s.c.Purge()
}

func init() {
	kv.Register("lru", func(ctx context.Context, conf map[string]interface{}) (kv.Store, error) {
		size, err := intParam(conf, "size")
		if err != nil {
			return nil, err
		}
		nested, err := kv.Nested(ctx, conf, "nested")
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nested, size)
	})
}

// Config files are decoded with UseNumber,
// but callers building conf maps in code may use plain ints.
func intParam(conf map[string]interface{}, name string) (int, error) {
	switch v := conf[name].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), errors.Wrapf(err, `parsing "%s" parameter`, name)
	}
	return 0, errors.Errorf(`missing "%s" parameter`, name)
}
