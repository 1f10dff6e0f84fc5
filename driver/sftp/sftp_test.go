package sftp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/sftp"

	"github.com/bobg/hub/meta"
)

// pipeDialer serves the local filesystem over an in-process SFTP session.
func pipeDialer(t *testing.T) Dialer {
	return func() (*sftp.Client, io.Closer, error) {
		var (
			txr, txw = io.Pipe()
			rxr, rxw = io.Pipe()
		)
		server, err := sftp.NewServer(struct {
			io.Reader
			io.WriteCloser
		}{txr, rxw})
		if err != nil {
			return nil, nil, err
		}
		go server.Serve()

		client, err := sftp.NewClientPipe(rxr, txw)
		if err != nil {
			return nil, nil, err
		}
		t.Cleanup(func() { server.Close() })
		return client, nil, nil
	}
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	d := New(pipeDialer(t), base, 0, nil)
	defer d.Close()

	f := meta.New("docs", "a.html", 11)
	f.Path = "docs/sub/a.html"

	if err := d.StartUpload(ctx, f); err != nil {
		t.Fatal(err)
	}
	if err := d.UploadChunk(ctx, f, 0, []byte("hello ")); err != nil {
		t.Fatal(err)
	}
	if err := d.UploadChunk(ctx, f, 6, []byte("wor")); err != nil {
		t.Fatal(err)
	}
	if err := d.RestartUpload(ctx, f, 6); err != nil {
		t.Fatal(err)
	}
	if err := d.UploadChunk(ctx, f, 6, []byte("there")); err != nil {
		t.Fatal(err)
	}
	if err := d.EndUpload(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(base, "docs", "sub", "a.html"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("hello there", string(got)); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	if f.Extra[MtimeKey] == "" {
		t.Error("mtime not recorded")
	}

	chunk, err := d.GetChunk(ctx, f, 6, 100)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("there", string(chunk)); diff != "" {
		t.Errorf("chunk mismatch (-want +got):\n%s", diff)
	}

	if err = d.RestartUpload(ctx, f, 0); err == nil {
		t.Error("restart with no partial upload succeeded")
	}
}

func TestMoveDelete(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	d := New(pipeDialer(t), base, 0, nil)
	defer d.Close()

	if err := os.MkdirAll(filepath.Join(base, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "docs", "a.html"), []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}

	old := meta.New("docs", "a.html", 3)
	old.Path = "docs/a.html"
	nf := meta.New("docs", "x/b.html", 3)
	nf.Path = "docs/x/b.html"

	if err := d.MoveFile(ctx, old, nf); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(base, "docs", "x", "b.html"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("abc", string(got)); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	if _, err = os.Stat(filepath.Join(base, "docs", "a.html")); !os.IsNotExist(err) {
		t.Errorf("old file still present (err %v)", err)
	}

	if err = d.DeleteFile(ctx, nf); err != nil {
		t.Fatal(err)
	}
	if _, err = os.Stat(filepath.Join(base, "docs", "x", "b.html")); !os.IsNotExist(err) {
		t.Errorf("deleted file still present (err %v)", err)
	}
	if err = d.DeleteFile(ctx, nf); err != nil {
		t.Errorf("deleting twice: %s", err)
	}
}

type handle struct {
	files   map[string]*meta.File
	updates []string
}

func (h *handle) UpdateFile(_ context.Context, f *meta.File) error {
	h.files[f.Path] = f
	h.updates = append(h.updates, f.Path)
	return nil
}

func (h *handle) DeleteFile(context.Context, *meta.File) error { return nil }

func (h *handle) MoveFile(context.Context, *meta.File, string) (*meta.File, error) {
	return nil, nil
}

func (h *handle) GetFile(context.Context, string, string) (*meta.File, error) {
	return nil, meta.ErrNotFound
}

func (h *handle) GetFileByPath(_ context.Context, path string) (*meta.File, error) {
	f, ok := h.files[path]
	if !ok {
		return nil, meta.ErrNotFound
	}
	return f, nil
}

func (h *handle) NewFile(path string, size int64) *meta.File {
	if !strings.HasPrefix(path, "docs/") {
		return nil
	}
	f := meta.New("docs", strings.TrimPrefix(path, "docs/"), size)
	f.Path = path
	return f
}

func (h *handle) SaveExtra(context.Context, *meta.File) error { return nil }

func (h *handle) Paths() []string { return []string{"docs"} }

func TestScan(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	d := New(pipeDialer(t), base, 0, nil)
	defer d.Close()

	for _, p := range []string{"docs/a.html", "docs/sub/b.html", "other/c.html"} {
		name := filepath.Join(base, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(name, []byte(p), 0644); err != nil {
			t.Fatal(err)
		}
	}

	h := &handle{files: make(map[string]*meta.File)}
	if err := d.Start(ctx, h); err != nil {
		t.Fatal(err)
	}
	sort.Strings(h.updates)
	if diff := cmp.Diff([]string{"docs/a.html", "docs/sub/b.html"}, h.updates); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}

	h.updates = nil
	if err := d.Start(ctx, h); err != nil {
		t.Fatal(err)
	}
	if len(h.updates) != 0 {
		t.Errorf("got updates %v on rescan, want none", h.updates)
	}
}
