package plug

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/driver/mem"
	"github.com/bobg/hub/folder"
	"github.com/bobg/hub/kv"
	kvmem "github.com/bobg/hub/kv/mem"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/router"
	"github.com/bobg/hub/wake"
)

// recorder is a mem driver that records the offsets of the chunks it receives
// and how many uploads overlap.
type recorder struct {
	*mem.Driver

	mu        sync.Mutex
	offsets   []int64
	active    int
	maxActive int
	starts    int
}

func newRecorder() *recorder {
	return &recorder{Driver: mem.New()}
}

func (r *recorder) UploadChunk(ctx context.Context, f *meta.File, offset int64, data []byte) error {
	r.mu.Lock()
	r.offsets = append(r.offsets, offset)
	r.active++
	if r.active > r.maxActive {
		r.maxActive = r.active
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}()

	time.Sleep(time.Millisecond)
	return r.Driver.UploadChunk(ctx, f, offset, data)
}

func (r *recorder) StartUpload(ctx context.Context, f *meta.File) error {
	r.mu.Lock()
	r.starts++
	r.mu.Unlock()
	return r.Driver.StartUpload(ctx, f)
}

func (r *recorder) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

func (r *recorder) Offsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.offsets...)
}

// chunkOnly is a recorder that can only receive files in chunks.
type chunkOnly struct {
	r *recorder
}

func (c chunkOnly) Start(ctx context.Context, h driver.Handle) error { return c.r.Start(ctx, h) }

func (c chunkOnly) GetChunk(ctx context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	return c.r.GetChunk(ctx, f, offset, size)
}

func (c chunkOnly) GetFile(ctx context.Context, f *meta.File) ([]byte, error) {
	return c.r.GetFile(ctx, f)
}

func (c chunkOnly) StartUpload(ctx context.Context, f *meta.File) error { return c.r.StartUpload(ctx, f) }

func (c chunkOnly) UploadChunk(ctx context.Context, f *meta.File, offset int64, data []byte) error {
	return c.r.UploadChunk(ctx, f, offset, data)
}

func (c chunkOnly) EndUpload(ctx context.Context, f *meta.File) error   { return c.r.EndUpload(ctx, f) }
func (c chunkOnly) AbortUpload(ctx context.Context, f *meta.File) error { return c.r.AbortUpload(ctx, f) }
func (c chunkOnly) DeleteFile(ctx context.Context, f *meta.File) error  { return c.r.DeleteFile(ctx, f) }

// stuckDelete is a mem driver that can not delete files.
type stuckDelete struct {
	*mem.Driver
}

func (stuckDelete) DeleteFile(context.Context, *meta.File) error {
	return driver.DriverErrorf("permission denied")
}

type testEnv struct {
	s       kv.Store
	bus     *wake.Local
	routers *router.Local
}

func newEnv(ctx context.Context, t *testing.T) *testEnv {
	t.Helper()

	s := kvmem.New()
	if err := folder.SaveFolder(ctx, s, "docs", nil); err != nil {
		t.Fatal(err)
	}
	if err := folder.SaveServiceFolder(ctx, s, "a", &folder.ServiceFolder{Name: "docs", Path: "a/docs"}); err != nil {
		t.Fatal(err)
	}
	if err := folder.SaveServiceFolder(ctx, s, "b", &folder.ServiceFolder{Name: "docs", Path: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := folder.SaveServices(ctx, s, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	return &testEnv{s: s, bus: wake.NewLocal(), routers: router.NewLocal()}
}

func (e *testEnv) plug(ctx context.Context, t *testing.T, name string, d driver.Driver, chunkSize int64) *Plug {
	t.Helper()

	p, err := New(ctx, Config{
		Name:    name,
		Store:   e.s,
		Bus:     e.bus,
		Dialer:  e.routers,
		Driver:  d,
		Options: driver.Options{driver.ChunkSizeOption: chunkSize},
		Retry:   driver.RetryPolicy{Initial: time.Millisecond, MaxInterval: time.Millisecond, MaxRetries: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	e.routers.Add(p.Router())
	go p.Router().Run(ctx)
	if st, ok := d.(driver.Starter); ok {
		if err = st.Start(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func (e *testEnv) queue(ctx context.Context, t *testing.T, service string, ev *meta.Event) {
	t.Helper()

	b := kv.NewBatch(true)
	if err := meta.PutEvent(b, service, ev); err != nil {
		t.Fatal(err)
	}
	if err := e.s.Write(ctx, b); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) deal(ctx context.Context, t *testing.T, p *Plug) {
	t.Helper()

	if err := p.Dealer().Drain(ctx); err != nil {
		t.Fatal(err)
	}
	p.Dealer().Wait()
}

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	return data
}

func TestTransfer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	pa := e.plug(ctx, t, "a", da, 1<<20)
	rb := newRecorder()
	pb := e.plug(ctx, t, "b", rb, 20)

	data := testData(100)
	if err := da.Write(ctx, "a/docs/x.txt", data); err != nil {
		t.Fatal(err)
	}
	fid := meta.FID("docs", "x.txt")

	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	e.deal(ctx, t, pb)

	if diff := cmp.Diff([]int64{0, 20, 40, 60, 80}, rb.Offsets()); diff != "" {
		t.Errorf("chunk offsets mismatch (-want +got):\n%s", diff)
	}
	got, ok := rb.Read("b/x.txt")
	if !ok {
		t.Fatal("file not received")
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}

	f, err := pa.GetFile(ctx, "docs", "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, f.UptodateList()); diff != "" {
		t.Errorf("uptodate mismatch (-want +got):\n%s", diff)
	}
	transfers, err := meta.Transfers(ctx, e.s, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(transfers) != 0 {
		t.Errorf("got %d leftover transfer records, want 0", len(transfers))
	}
}

func TestResume(t *testing.T) {
	cases := []struct {
		name        string
		partial     []byte
		wantOffsets []int64
	}{{
		name:        "from_offset",
		partial:     testData(40),
		wantOffsets: []int64{40, 60, 80},
	}, {
		name:        "partial_lost",
		wantOffsets: []int64{0, 20, 40, 60, 80},
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			e := newEnv(ctx, t)
			da := mem.New()
			e.plug(ctx, t, "a", da, 1<<20)
			rb := newRecorder()
			pb := e.plug(ctx, t, "b", rb, 20)

			data := testData(100)
			if err := da.Write(ctx, "a/docs/x.txt", data); err != nil {
				t.Fatal(err)
			}
			fid := meta.FID("docs", "x.txt")

			if tc.partial != nil {
				rb.SetPartial("b/x.txt", tc.partial)
			}
			if err := meta.PutTransfer(ctx, e.s, "b", &meta.Transfer{FID: fid, Source: "a", Offset: 40}); err != nil {
				t.Fatal(err)
			}

			if err := pb.Dealer().Resume(ctx); err != nil {
				t.Fatal(err)
			}
			pb.Dealer().Wait()

			if diff := cmp.Diff(tc.wantOffsets, rb.Offsets()); diff != "" {
				t.Errorf("chunk offsets mismatch (-want +got):\n%s", diff)
			}
			got, _ := rb.Read("b/x.txt")
			if !bytes.Equal(got, data) {
				t.Errorf("got %q, want %q", got, data)
			}
		})
	}
}

func TestOneWorkerPerFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	e.plug(ctx, t, "a", da, 1<<20)
	rb := newRecorder()
	pb := e.plug(ctx, t, "b", rb, 10)

	data := testData(200)
	if err := da.Write(ctx, "a/docs/x.txt", data); err != nil {
		t.Fatal(err)
	}
	fid := meta.FID("docs", "x.txt")

	for i := 0; i < 5; i++ {
		e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
		if err := pb.Dealer().Drain(ctx); err != nil {
			t.Fatal(err)
		}
		time.Sleep(3 * time.Millisecond)
	}
	pb.Dealer().Wait()

	if rb.maxActive != 1 {
		t.Errorf("got %d concurrent uploads, want 1", rb.maxActive)
	}
	if n := pb.Dealer().Active(); n != 0 {
		t.Errorf("got %d active workers after Wait, want 0", n)
	}
	got, _ := rb.Read("b/x.txt")
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestCollapse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	e.plug(ctx, t, "a", da, 1<<20)
	rb := newRecorder()
	pb := e.plug(ctx, t, "b", rb, 20)

	if err := da.Write(ctx, "a/docs/x.txt", testData(100)); err != nil {
		t.Fatal(err)
	}
	fid := meta.FID("docs", "x.txt")

	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Delete, Source: "a"})
	e.deal(ctx, t, pb)

	if offsets := rb.Offsets(); len(offsets) != 0 {
		t.Errorf("got chunks at %v, want none", offsets)
	}
	if _, ok := rb.Read("b/x.txt"); ok {
		t.Error("file received despite later deletion")
	}
	events, keys, err := meta.PendingEvents(ctx, e.s, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 || len(keys) != 0 {
		t.Errorf("got %d events (%d keys) left in queue, want 0", len(events), len(keys))
	}
}

func TestDeletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	pa := e.plug(ctx, t, "a", da, 1<<20)
	db := mem.New()
	pb := e.plug(ctx, t, "b", db, 20)

	if err := da.Write(ctx, "a/docs/x.txt", testData(30)); err != nil {
		t.Fatal(err)
	}
	fid := meta.FID("docs", "x.txt")
	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	e.deal(ctx, t, pb)
	if _, ok := db.Read("b/x.txt"); !ok {
		t.Fatal("file not received")
	}

	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Delete, Source: "a"})
	e.deal(ctx, t, pb)

	if _, ok := db.Read("b/x.txt"); ok {
		t.Error("file not deleted")
	}
	f, err := pa.GetFile(ctx, "docs", "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a"}, f.OwnerList()); diff != "" {
		t.Errorf("owners mismatch (-want +got):\n%s", diff)
	}
}

func TestMove(t *testing.T) {
	cases := []struct {
		name       string
		nativeMove bool
	}{{
		name:       "native",
		nativeMove: true,
	}, {
		name: "fallback",
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			e := newEnv(ctx, t)
			da := mem.New()
			pa := e.plug(ctx, t, "a", da, 1<<20)

			db := mem.New()
			var dbDriver driver.Driver = db
			if !tc.nativeMove {
				dbDriver = mem.NoMove{D: db}
			}
			pb := e.plug(ctx, t, "b", dbDriver, 20)

			data := testData(50)
			if err := da.Write(ctx, "a/docs/x.txt", data); err != nil {
				t.Fatal(err)
			}
			oldFID := meta.FID("docs", "x.txt")
			e.queue(ctx, t, "b", &meta.Event{FID: oldFID, Command: meta.Update, Source: "a"})
			e.deal(ctx, t, pb)

			if err := da.Rename(ctx, "a/docs/x.txt", "a/docs/y.txt"); err != nil {
				t.Fatal(err)
			}
			newFID := meta.FID("docs", "y.txt")
			e.queue(ctx, t, "b", &meta.Event{FID: oldFID, Command: meta.Move, Source: "a", NewFID: newFID})
			e.deal(ctx, t, pb)
			e.deal(ctx, t, pb) // the fallback queues a transfer of the new file

			if _, ok := db.Read("b/x.txt"); ok {
				t.Error("old file still present")
			}
			got, ok := db.Read("b/y.txt")
			if !ok {
				t.Fatal("new file not present")
			}
			if !bytes.Equal(got, data) {
				t.Errorf("got %q, want %q", got, data)
			}

			if _, err := pa.GetFile(ctx, "docs", "x.txt"); err != meta.ErrNotFound {
				t.Errorf("got error %v for old file, want ErrNotFound", err)
			}
			f, err := pa.GetFile(ctx, "docs", "y.txt")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]string{"a", "b"}, f.UptodateList()); diff != "" {
				t.Errorf("uptodate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnreachableSourceKeepsTransfer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	rb := newRecorder()
	pb := e.plug(ctx, t, "b", rb, 20)

	// Service c has the file but no router.
	f := meta.New("docs", "z.txt", 10)
	if err := meta.WriteUpdate(ctx, e.s, f, "c", time.Now()); err != nil {
		t.Fatal(err)
	}

	e.queue(ctx, t, "b", &meta.Event{FID: f.FID, Command: meta.Update, Source: "c"})
	e.deal(ctx, t, pb)

	tr, err := meta.GetTransfer(ctx, e.s, "b", f.FID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&meta.Transfer{FID: f.FID, Source: "c"}, tr); diff != "" {
		t.Errorf("transfer record mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateFileStopsTransfer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	e.plug(ctx, t, "a", da, 1<<20)
	rb := newRecorder()
	pb := e.plug(ctx, t, "b", rb, 1)

	if err := da.Write(ctx, "a/docs/x.txt", testData(500)); err != nil {
		t.Fatal(err)
	}
	fid := meta.FID("docs", "x.txt")
	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	if err := pb.Dealer().Drain(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	local := testData(7)
	if err := rb.Write(ctx, "b/x.txt", local); err != nil {
		t.Fatal(err)
	}
	pb.Dealer().Wait()

	if _, err := meta.GetTransfer(ctx, e.s, "b", fid); err != kv.ErrNotFound {
		t.Errorf("got error %v for transfer record, want ErrNotFound", err)
	}
	f, err := pb.GetFile(ctx, "docs", "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b"}, f.UptodateList()); diff != "" {
		t.Errorf("uptodate mismatch (-want +got):\n%s", diff)
	}
	if f.Size != int64(len(local)) {
		t.Errorf("got size %d, want %d", f.Size, len(local))
	}
}

func TestSmallFile(t *testing.T) {
	cases := []struct {
		name        string
		chunkOnly   bool
		wantOffsets []int64
	}{{
		name: "whole_file",
	}, {
		name:        "single_chunk",
		chunkOnly:   true,
		wantOffsets: []int64{0},
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			e := newEnv(ctx, t)
			da := mem.New()
			pa := e.plug(ctx, t, "a", da, 1<<20)
			rb := newRecorder()
			var dbDriver driver.Driver = rb
			if tc.chunkOnly {
				dbDriver = chunkOnly{r: rb}
			}
			pb := e.plug(ctx, t, "b", dbDriver, 20)

			// Under two chunks.
			data := testData(30)
			if err := da.Write(ctx, "a/docs/x.txt", data); err != nil {
				t.Fatal(err)
			}
			fid := meta.FID("docs", "x.txt")
			e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
			e.deal(ctx, t, pb)

			if diff := cmp.Diff(tc.wantOffsets, rb.Offsets()); diff != "" {
				t.Errorf("chunk offsets mismatch (-want +got):\n%s", diff)
			}
			got, ok := rb.Read("b/x.txt")
			if !ok {
				t.Fatal("file not received")
			}
			if !bytes.Equal(got, data) {
				t.Errorf("got %q, want %q", got, data)
			}
			f, err := pa.GetFile(ctx, "docs", "x.txt")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]string{"a", "b"}, f.UptodateList()); diff != "" {
				t.Errorf("uptodate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFailedDeletionRelinquishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	pa := e.plug(ctx, t, "a", da, 1<<20)
	db := stuckDelete{Driver: mem.New()}
	pb := e.plug(ctx, t, "b", db, 20)

	if err := da.Write(ctx, "a/docs/x.txt", testData(30)); err != nil {
		t.Fatal(err)
	}
	fid := meta.FID("docs", "x.txt")
	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	e.deal(ctx, t, pb)

	f, err := pa.GetFile(ctx, "docs", "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, f.OwnerList()); diff != "" {
		t.Fatalf("owners before deletion mismatch (-want +got):\n%s", diff)
	}

	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Delete, Source: "a"})
	e.deal(ctx, t, pb)

	f, err = pa.GetFile(ctx, "docs", "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a"}, f.OwnerList()); diff != "" {
		t.Errorf("owners mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, f.UptodateList()); diff != "" {
		t.Errorf("uptodate mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatedUpdateStartsOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	e.plug(ctx, t, "a", da, 1<<20)
	rb := newRecorder()
	pb := e.plug(ctx, t, "b", rb, 20)

	data := testData(100)
	if err := da.Write(ctx, "a/docs/x.txt", data); err != nil {
		t.Fatal(err)
	}
	fid := meta.FID("docs", "x.txt")
	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	e.queue(ctx, t, "b", &meta.Event{FID: fid, Command: meta.Update, Source: "a"})
	e.deal(ctx, t, pb)

	if n := rb.Starts(); n != 1 {
		t.Errorf("got %d uploads started, want 1", n)
	}
	if diff := cmp.Diff([]int64{0, 20, 40, 60, 80}, rb.Offsets()); diff != "" {
		t.Errorf("chunk offsets mismatch (-want +got):\n%s", diff)
	}
	got, _ := rb.Read("b/x.txt")
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestMoveToSamePath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newEnv(ctx, t)
	da := mem.New()
	pa := e.plug(ctx, t, "a", da, 1<<20)

	if err := da.Write(ctx, "a/docs/x.txt", testData(10)); err != nil {
		t.Fatal(err)
	}
	f, err := pa.GetFile(ctx, "docs", "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	before, err := meta.Changes(ctx, e.s)
	if err != nil {
		t.Fatal(err)
	}

	nf, err := pa.MoveFile(ctx, f, "a/docs/x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if nf.FID != f.FID {
		t.Errorf("got FID %s, want %s", nf.FID, f.FID)
	}

	after, err := meta.Changes(ctx, e.s)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Errorf("got %d queued changes, want %d", len(after), len(before))
	}
	f, err = pa.GetFile(ctx, "docs", "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a"}, f.OwnerList()); diff != "" {
		t.Errorf("owners mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, f.UptodateList()); diff != "" {
		t.Errorf("uptodate mismatch (-want +got):\n%s", diff)
	}
}
