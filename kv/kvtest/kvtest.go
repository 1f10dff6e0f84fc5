// Package kvtest contains a conformance test for kv.Store implementations.
package kvtest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/hub/kv"
)

// Store exercises every kv.Store operation against s,
// which must be empty.
func Store(ctx context.Context, t *testing.T, s kv.Store) {
	t.Run("get_put_delete", func(t *testing.T) { GetPutDelete(ctx, t, s) })
	t.Run("range", func(t *testing.T) { Ranges(ctx, t, s) })
	t.Run("batch", func(t *testing.T) { Batches(ctx, t, s) })
	t.Run("prefixed", func(t *testing.T) { Ranges(ctx, t, kv.Prefixed(s, "scoped/")) })
}

func GetPutDelete(ctx context.Context, t *testing.T, s kv.Store) {
	if _, err := s.Get(ctx, "gpd:a"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("got error %v, want %v", err, kv.ErrNotFound)
	}
	ok, err := s.Exists(ctx, "gpd:a")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("absent key exists")
	}

	if err = s.Put(ctx, "gpd:a", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err = s.Put(ctx, "gpd:empty", nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "gpd:a")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want hello", got)
	}

	got, err = s.Get(ctx, "gpd:empty")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %q, want empty value", got)
	}

	if err = s.Put(ctx, "gpd:a", []byte("goodbye")); err != nil {
		t.Fatal(err)
	}
	got, err = s.Get(ctx, "gpd:a")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "goodbye" {
		t.Errorf("got %q, want goodbye", got)
	}

	if err = s.Delete(ctx, "gpd:a"); err != nil {
		t.Fatal(err)
	}
	if err = s.Delete(ctx, "gpd:a"); err != nil {
		t.Fatalf("deleting absent key: %s", err)
	}
	ok, err = s.Exists(ctx, "gpd:a")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("deleted key exists")
	}
	ok, err = s.Exists(ctx, "gpd:empty")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("key with empty value does not exist")
	}
}

func Ranges(ctx context.Context, t *testing.T, s kv.Store) {
	for _, k := range []string{"r:a", "r:b", "r:b:1", "r:c", "r;", "q:z"} {
		if err := s.Put(ctx, k, []byte("v"+k)); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct {
		r    kv.Range
		want []string
	}{
		{r: kv.Range{Prefix: "r:"}, want: []string{"r:a", "r:b", "r:b:1", "r:c"}},
		{r: kv.Range{Prefix: "r:", Reverse: true}, want: []string{"r:c", "r:b:1", "r:b", "r:a"}},
		{r: kv.Range{Prefix: "r:", Start: "r:b"}, want: []string{"r:b", "r:b:1", "r:c"}},
		{r: kv.Range{Prefix: "r:", Stop: "r:c"}, want: []string{"r:a", "r:b", "r:b:1"}},
		{r: kv.Range{Prefix: "r:", Start: "r:b", Stop: "r:c", KeysOnly: true}, want: []string{"r:b", "r:b:1"}},
		{r: kv.Range{Prefix: "r:b"}, want: []string{"r:b", "r:b:1"}},
		{r: kv.Range{Prefix: "nope:"}},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%02d", i+1), func(t *testing.T) {
			var got []string
			err := s.Range(ctx, c.r, func(key string, value []byte) error {
				got = append(got, key)
				if c.r.KeysOnly {
					return nil
				}
				if string(value) != "v"+key {
					t.Errorf("got value %q for key %s", value, key)
				}
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	stop := errors.New("stop")
	var n int
	err := s.Range(ctx, kv.Range{Prefix: "r:"}, func(string, []byte) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("got error %v, want %v", err, stop)
	}
	if n != 1 {
		t.Errorf("callback ran %d times after returning an error, want 1", n)
	}
}

func Batches(ctx context.Context, t *testing.T, s kv.Store) {
	if err := s.Put(ctx, "b:old", []byte("x")); err != nil {
		t.Fatal(err)
	}

	for _, atomic := range []bool{true, false} {
		b := kv.NewBatch(atomic)
		b.Put("b:1", []byte("one"))
		if err := b.PutJSON("b:2", map[string]int{"two": 2}); err != nil {
			t.Fatal(err)
		}
		b.Delete("b:old")
		if err := s.Write(ctx, b); err != nil {
			t.Fatal(err)
		}

		var got map[string]int
		if err := kv.GetJSON(ctx, s, "b:2", &got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(map[string]int{"two": 2}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if ok, _ := s.Exists(ctx, "b:old"); ok {
			t.Error("b:old survived the batch")
		}
	}

	if err := kv.DeletePrefix(ctx, s, "b:"); err != nil {
		t.Fatal(err)
	}
	var n int
	err := s.Range(ctx, kv.Range{Prefix: "b:", KeysOnly: true}, func(string, []byte) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("%d keys left after DeletePrefix", n)
	}
}
