package referee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/hub/folder"
	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/kv/mem"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/wake"
)

func setup(ctx context.Context, t *testing.T) (kv.Store, *wake.Local, *Referee) {
	t.Helper()

	s := mem.New()
	if err := folder.SaveFolder(ctx, s, "docs", nil); err != nil {
		t.Fatal(err)
	}
	views := map[string]*folder.Options{
		"a": nil,
		"b": nil,
		"c": {FileSize: &folder.SizeRange{Max: "50B"}},
	}
	for svc, opts := range views {
		err := folder.SaveServiceFolder(ctx, s, svc, &folder.ServiceFolder{Name: "docs", Path: svc, Options: opts})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := folder.SaveServices(ctx, s, []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}

	bus := wake.NewLocal()
	return s, bus, New(s, bus, nil)
}

func events(ctx context.Context, t *testing.T, s kv.Store, service string) []string {
	t.Helper()

	evs, _, err := meta.PendingEvents(ctx, s, service)
	if err != nil {
		t.Fatal(err)
	}
	var result []string
	for _, ev := range evs {
		str := fmt.Sprintf("%s %s from %s", ev.Command, ev.FID, ev.Source)
		if ev.NewFID != "" {
			str += " to " + ev.NewFID
		}
		result = append(result, str)
	}
	return result
}

func woken(bus *wake.Local, service string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	return bus.Wait(ctx, wake.Service(service)) == nil
}

func write(ctx context.Context, t *testing.T, s kv.Store, name string, size int64, services ...string) *meta.File {
	t.Helper()

	f := meta.New("docs", name, size)
	if err := meta.WriteUpdate(ctx, s, f, services[0], time.Now()); err != nil {
		t.Fatal(err)
	}
	b := kv.NewBatch(true)
	for _, svc := range services[1:] {
		meta.PutUptodate(b, f, svc, time.Now())
	}
	if err := s.Write(ctx, b); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s, bus, r := setup(ctx, t)

	small := write(ctx, t, s, "small.txt", 10, "a")
	big := write(ctx, t, s, "big.txt", 100, "a")
	for _, f := range []*meta.File{small, big} {
		if err := meta.PutChange(ctx, s, &meta.Change{FID: f.FID, Command: meta.Update, Service: "a"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Drain(ctx); err != nil {
		t.Fatal(err)
	}

	want := map[string][]string{
		"a": nil,
		"b": {
			"UPDATE " + small.FID + " from a",
			"UPDATE " + big.FID + " from a",
		},
		"c": {
			"UPDATE " + small.FID + " from a",
		},
	}
	for svc, w := range want {
		if diff := cmp.Diff(w, events(ctx, t, s, svc)); diff != "" {
			t.Errorf("events of %s mismatch (-want +got):\n%s", svc, diff)
		}
	}

	f, err := meta.Get(ctx, s, big.FID, "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, f.OwnerList()); diff != "" {
		t.Errorf("owners mismatch (-want +got):\n%s", diff)
	}

	if !woken(bus, "b") || !woken(bus, "c") {
		t.Error("targets not woken")
	}
	if woken(bus, "a") {
		t.Error("source woken")
	}

	changes, err := meta.Changes(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("got %d changes left, want 0", len(changes))
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _, r := setup(ctx, t)

	f := write(ctx, t, s, "x.txt", 10, "a", "b", "c")
	if _, err := meta.Relinquish(ctx, s, f.FID, "b"); err != nil {
		t.Fatal(err)
	}
	if err := meta.PutChange(ctx, s, &meta.Change{FID: f.FID, Command: meta.Delete, Service: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Drain(ctx); err != nil {
		t.Fatal(err)
	}

	want := map[string][]string{
		"a": {"DELETE " + f.FID + " from b"},
		"b": nil,
		"c": {"DELETE " + f.FID + " from b"},
	}
	for svc, w := range want {
		if diff := cmp.Diff(w, events(ctx, t, s, svc)); diff != "" {
			t.Errorf("events of %s mismatch (-want +got):\n%s", svc, diff)
		}
	}
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	s, _, r := setup(ctx, t)

	// a and b hold x.txt; c owns it but its transfer never finished.
	old := write(ctx, t, s, "x.txt", 10, "a", "b")
	if err := meta.AddOwners(ctx, s, old.FID, "c"); err != nil {
		t.Fatal(err)
	}

	// a renames it to y.txt.
	nf, err := meta.Clone(ctx, s, old, "docs", "y.txt")
	if err != nil {
		t.Fatal(err)
	}
	if err = meta.WriteUpdate(ctx, s, nf, "a", time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err = meta.Relinquish(ctx, s, old.FID, "a"); err != nil {
		t.Fatal(err)
	}
	if err = meta.PutChange(ctx, s, &meta.Change{FID: old.FID, Command: meta.Move, Service: "a", NewFID: nf.FID}); err != nil {
		t.Fatal(err)
	}

	if err = r.Drain(ctx); err != nil {
		t.Fatal(err)
	}

	want := map[string][]string{
		"a": nil,
		"b": {"MOVE " + old.FID + " from a to " + nf.FID},
		"c": {
			"UPDATE " + nf.FID + " from a",
			"DELETE " + old.FID + " from a",
		},
	}
	for svc, w := range want {
		if diff := cmp.Diff(w, events(ctx, t, s, svc)); diff != "" {
			t.Errorf("events of %s mismatch (-want +got):\n%s", svc, diff)
		}
	}

	got, err := meta.Get(ctx, s, nf.FID, "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got.OwnerList()); diff != "" {
		t.Errorf("owners mismatch (-want +got):\n%s", diff)
	}
}

func TestDropped(t *testing.T) {
	ctx := context.Background()
	s, _, r := setup(ctx, t)

	if err := s.Put(ctx, meta.ChangePrefix+"garbage", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if err := meta.PutChange(ctx, s, &meta.Change{FID: meta.FID("docs", "nope"), Command: meta.Update, Service: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Drain(ctx); err != nil {
		t.Fatal(err)
	}

	changes, err := meta.Changes(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("got %d changes left, want 0", len(changes))
	}
	for _, svc := range []string{"a", "b", "c"} {
		if evs := events(ctx, t, s, svc); len(evs) != 0 {
			t.Errorf("got events %v for %s, want none", evs, svc)
		}
	}
}

type unreachableBus struct {
	waits int32
}

func (*unreachableBus) Notify(string) {}

func (b *unreachableBus) Wait(context.Context, string) error {
	atomic.AddInt32(&b.waits, 1)
	return errors.New("connection refused")
}

func TestRunBacksOff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	bus := &unreachableBus{}
	r := New(mem.New(), bus, log.New(io.Discard, "", 0))
	if err := r.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("got %v, want %v", err, context.DeadlineExceeded)
	}
	if n := atomic.LoadInt32(&bus.waits); n > 2 {
		t.Errorf("got %d waits on a failing bus in 200ms, want at most 2", n)
	}
}
