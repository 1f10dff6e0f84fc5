// Package kv describes the metadata store:
// a namespaced key-value store with prefix range scans and atomic multi-key batches.
//
// All cross-process state of a hub deployment
// (file records, ownership, in-flight transfer progress, folder configuration, event queues)
// lives in a kv.Store,
// so that any component may crash and resume.
//
// Keys are hierarchical strings such as "file:{fid}:owner:{service}".
// Namespacing is by key prefix.
// See Prefixed for a client that transparently prefixes every key.
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is the error returned by Get when a key is absent.
var ErrNotFound = errors.New("not found")

// Store is the interface every metadata store implements.
type Store interface {
	// Get gets the value stored at key.
	// If the key is absent, the error is ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists tells whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Put stores value at key, replacing any existing value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key.
	// Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Range calls f on each key (and value, unless r.KeysOnly) selected by r,
	// in key order (reverse order if r.Reverse).
	// If f returns an error,
	// Range stops and returns that error.
	Range(ctx context.Context, r Range, f func(key string, value []byte) error) error

	// Write commits the operations in b.
	// If b is atomic, either all of them take effect or none does.
	Write(ctx context.Context, b *Batch) error
}

// Range selects a contiguous set of keys.
// All conditions are combined:
// keys must start with Prefix,
// be >= Start (if nonempty),
// and be < Stop (if nonempty).
type Range struct {
	Prefix      string
	Start, Stop string
	KeysOnly    bool
	Reverse     bool
}

// Bounds computes the half-open interval [lo, hi) of keys selected by r.
// An empty hi means unbounded.
func (r Range) Bounds() (lo, hi string) {
	lo, hi = r.Prefix, PrefixEnd(r.Prefix)
	if r.Start > lo {
		lo = r.Start
	}
	if r.Stop != "" && (hi == "" || r.Stop < hi) {
		hi = r.Stop
	}
	return lo, hi
}

// Contains tells whether key is selected by r.
func (r Range) Contains(key string) bool {
	lo, hi := r.Bounds()
	return key >= lo && (hi == "" || key < hi)
}

// PrefixEnd computes the smallest key greater than every key having the given prefix.
// It returns "" if there is no such key
// (the prefix is empty or consists only of 0xff bytes).
func PrefixEnd(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

// Op is a single operation in a Batch.
// A nil Value means delete.
type Op struct {
	Key   string
	Value []byte
}

// Delete tells whether o is a deletion.
func (o Op) Delete() bool {
	return o.Value == nil
}

// Batch collects puts and deletes to be committed together with Store.Write.
type Batch struct {
	Atomic bool
	Ops    []Op
}

// NewBatch produces a new, empty Batch.
func NewBatch(atomic bool) *Batch {
	return &Batch{Atomic: atomic}
}

// Put adds a put operation to the batch.
func (b *Batch) Put(key string, value []byte) {
	if value == nil {
		value = []byte{}
	}
	b.Ops = append(b.Ops, Op{Key: key, Value: value})
}

// Delete adds a delete operation to the batch.
func (b *Batch) Delete(key string) {
	b.Ops = append(b.Ops, Op{Key: key})
}

// PutJSON adds a put of the JSON encoding of v.
func (b *Batch) PutJSON(key string, v interface{}) error {
	j, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Put(key, j)
	return nil
}

// Len is the number of operations in the batch.
func (b *Batch) Len() int {
	return len(b.Ops)
}

// GetJSON gets the value at key and JSON-decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	val, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(val, v)
}

// PutJSON JSON-encodes v and stores it at key.
func PutJSON(ctx context.Context, s Store, key string, v interface{}) error {
	j, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, j)
}

// DeletePrefix deletes every key having the given prefix, atomically.
func DeletePrefix(ctx context.Context, s Store, prefix string) error {
	b := NewBatch(true)
	err := s.Range(ctx, Range{Prefix: prefix, KeysOnly: true}, func(key string, _ []byte) error {
		b.Delete(key)
		return nil
	})
	if err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}
	return s.Write(ctx, b)
}
