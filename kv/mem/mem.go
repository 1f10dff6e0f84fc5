// Package mem implements an in-memory metadata store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/bobg/hub/kv"
)

var _ kv.Store = &Store{}

// Store is a memory-based implementation of kv.Store.
type Store struct {
	mu   sync.Mutex
	vals map[string][]byte
}

// New produces a new Store.
func New() *Store {
	return &Store{vals: make(map[string][]byte)}
}

// Get gets the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.vals[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, kv.ErrNotFound
}

// Exists tells whether key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.vals[key]
	return ok, nil
}

// Put stores value at key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(key, value)
	return nil
}

// Caller must obtain a lock.
func (s *Store) put(key string, value []byte) {
	s.vals[key] = append([]byte{}, value...)
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.vals, key)
	return nil
}

// Range produces the selected keys in order.
// It works on a snapshot,
// so f may call back into the store.
func (s *Store) Range(ctx context.Context, r kv.Range, f func(string, []byte) error) error {
	type pair struct {
		k string
		v []byte
	}

	s.mu.Lock()
	var pairs []pair
	for k, v := range s.vals {
		if !r.Contains(k) {
			continue
		}
		p := pair{k: k}
		if !r.KeysOnly {
			p.v = append([]byte{}, v...)
		}
		pairs = append(pairs, p)
	}
	s.mu.Unlock()

	sort.Slice(pairs, func(i, j int) bool {
		if r.Reverse {
			return pairs[i].k > pairs[j].k
		}
		return pairs[i].k < pairs[j].k
	})

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f(p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}

// Write commits a batch.
// All batches are atomic in this implementation.
func (s *Store) Write(_ context.Context, b *kv.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range b.Ops {
		if op.Delete() {
			delete(s.vals, op.Key)
		} else {
			s.put(op.Key, op.Value)
		}
	}
	return nil
}

// Len is the number of keys in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vals)
}

func init() {
	kv.Register("mem", func(context.Context, map[string]interface{}) (kv.Store, error) {
		return New(), nil
	})
}
