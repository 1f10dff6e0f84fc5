// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	stderrs "errors"
	"log"

	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
)

var _ kv.Store = &Store{}

type Store struct {
	s kv.Store
}

func New(s kv.Store) *Store {
	return &Store{s: s}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.s.Get(ctx, key)
	switch {
	case stderrs.Is(err, kv.ErrNotFound):
		log.Printf("Get %s: not found", key)
	case err != nil:
		log.Printf("ERROR Get %s: %s", key, err)
	default:
		log.Printf("Get %s (%d bytes)", key, len(v))
	}
	return v, err
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.s.Exists(ctx, key)
	if err != nil {
		log.Printf("ERROR Exists %s: %s", key, err)
	} else {
		log.Printf("Exists %s: %v", key, ok)
	}
	return ok, err
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	err := s.s.Put(ctx, key, value)
	if err != nil {
		log.Printf("ERROR Put %s: %s", key, err)
	} else {
		log.Printf("Put %s (%d bytes)", key, len(value))
	}
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.s.Delete(ctx, key)
	if err != nil {
		log.Printf("ERROR Delete %s: %s", key, err)
	} else {
		log.Printf("Delete %s", key)
	}
	return err
}

func (s *Store) Range(ctx context.Context, r kv.Range, f func(string, []byte) error) error {
	log.Printf("Range, prefix=%s start=%s stop=%s reverse=%v", r.Prefix, r.Start, r.Stop, r.Reverse)
	return s.s.Range(ctx, r, func(key string, value []byte) error {
		err := f(key, value)
		if err != nil {
			log.Printf("  ERROR in Range: %s: %s", key, err)
		} else {
			log.Printf("  Range: %s", key)
		}
		return err
	})
}

func (s *Store) Write(ctx context.Context, b *kv.Batch) error {
	err := s.s.Write(ctx, b)
	if err != nil {
		log.Printf("ERROR Write (%d ops, atomic=%v): %s", b.Len(), b.Atomic, err)
		return err
	}
	log.Printf("Write (%d ops, atomic=%v)", b.Len(), b.Atomic)
	for _, op := range b.Ops {
		if op.Delete() {
			log.Printf("  delete %s", op.Key)
		} else {
			log.Printf("  put %s (%d bytes)", op.Key, len(op.Value))
		}
	}
	return nil
}

func init() {
	kv.Register("logging", func(ctx context.Context, conf map[string]interface{}) (kv.Store, error) {
		nested, err := kv.Nested(ctx, conf, "nested")
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nested), nil
	})
}
