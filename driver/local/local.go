// Package local implements a driver for a directory tree on local disk.
//
// The driver scans its folders when it starts
// and then watches them for changes with a recursive filesystem watcher,
// reporting new, changed, and removed files to the hub.
// Incoming files are assembled in a staging directory beneath the root
// and renamed into place when complete.
package local

import (
	"context"
	stderrs "errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rjeczalik/notify"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/meta"
)

var (
	_ driver.ChunkReader     = &Driver{}
	_ driver.FileReader      = &Driver{}
	_ driver.UploadStarter   = &Driver{}
	_ driver.UploadRestarter = &Driver{}
	_ driver.ChunkWriter     = &Driver{}
	_ driver.UploadEnder     = &Driver{}
	_ driver.UploadAborter   = &Driver{}
	_ driver.Deleter         = &Driver{}
	_ driver.Mover           = &Driver{}
	_ driver.Starter         = &Driver{}
)

// StagingDir is the directory, beneath the root, holding partial uploads.
// It is never scanned or reported.
const StagingDir = ".hub"

// MtimeKey is the extra key under which the driver remembers a file's modification time.
const MtimeKey = "mtime"

// Driver keeps files beneath a root directory.
type Driver struct {
	root   string
	settle time.Duration
	logger *log.Logger

	mu sync.Mutex

	// Changes the driver made itself, by slash-separated path.
	// A zero time is an expected removal.
	// Watcher events matching one of these are not reported.
	own map[string]time.Time

	// Watcher events waiting for their paths to settle.
	pending map[string]time.Time
}

// New produces a Driver for the tree at root.
// A path reported by the watcher is handled only after it has been quiet for settle.
func New(root string, settle time.Duration, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		root:    root,
		settle:  settle,
		logger:  logger,
		own:     make(map[string]time.Time),
		pending: make(map[string]time.Time),
	}
}

// Root is the directory the driver keeps its files in.
func (d *Driver) Root() string {
	return d.root
}

func (d *Driver) abs(p string) string {
	return filepath.Join(d.root, filepath.FromSlash(p))
}

func (d *Driver) rel(abs string) (string, bool) {
	r, err := filepath.Rel(d.root, abs)
	if err != nil {
		return "", false
	}
	r = filepath.ToSlash(r)
	if r == "." || r == ".." || strings.HasPrefix(r, "../") {
		return "", false
	}
	if r == StagingDir || strings.HasPrefix(r, StagingDir+"/") {
		return "", false
	}
	return r, true
}

func (d *Driver) staging(f *meta.File) string {
	return filepath.Join(d.root, StagingDir, f.FID)
}

func mtime(info fs.FileInfo) string {
	return strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

func (d *Driver) expect(p string, when time.Time) {
	d.mu.Lock()
	d.own[p] = when
	d.mu.Unlock()
}

// Start scans the folders of the service, reporting files that are new or changed
// since the hub last saw them,
// then launches the watcher.
func (d *Driver) Start(ctx context.Context, h driver.Handle) error {
	if err := os.MkdirAll(filepath.Join(d.root, StagingDir), 0755); err != nil {
		return errors.Wrapf(err, "creating staging dir in %s", d.root)
	}

	for _, p := range h.Paths() {
		if err := d.scan(ctx, h, d.abs(p)); err != nil {
			return errors.Wrapf(err, "scanning %s", p)
		}
	}

	fsch := make(chan notify.EventInfo, 100)
	if err := notify.Watch(d.root+"/...", fsch, notify.All); err != nil {
		return errors.Wrapf(err, "watching %s/...", d.root)
	}

	go d.watch(ctx, h, fsch)

	return nil
}

func (d *Driver) scan(ctx context.Context, h driver.Handle, dir string) error {
	err := filepath.WalkDir(dir, func(p string, ent fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ent.IsDir() && ent.Name() == StagingDir {
			return filepath.SkipDir
		}
		if !ent.Type().IsRegular() {
			return nil
		}
		rel, ok := d.rel(p)
		if !ok {
			return nil
		}
		if err := d.changed(ctx, h, rel); err != nil {
			d.logger.Printf("ERROR scanning %s: %s", rel, err)
		}
		return nil
	})
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (d *Driver) watch(ctx context.Context, h driver.Handle, fsch chan notify.EventInfo) {
	defer notify.Stop(fsch)

	tick := d.settle / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Printf("context canceled, exiting watcher of %s", d.root)
			return

		case ev := <-fsch:
			rel, ok := d.rel(ev.Path())
			if !ok {
				continue
			}
			d.mu.Lock()
			d.pending[rel] = time.Now()
			d.mu.Unlock()

		case now := <-ticker.C:
			for _, rel := range d.settled(now) {
				if err := d.changed(ctx, h, rel); err != nil {
					d.logger.Printf("ERROR handling change of %s: %s", rel, err)
				}
			}
		}
	}
}

// settled removes and returns the pending paths that have been quiet long enough.
func (d *Driver) settled(now time.Time) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var result []string
	for rel, when := range d.pending {
		if now.Sub(when) >= d.settle {
			result = append(result, rel)
			delete(d.pending, rel)
		}
	}
	return result
}

// changed reports the current state of the file at rel to the hub.
func (d *Driver) changed(ctx context.Context, h driver.Handle, rel string) error {
	info, err := os.Stat(d.abs(rel))
	if stderrs.Is(err, fs.ErrNotExist) {
		return d.removed(ctx, h, rel)
	}
	if err != nil {
		return errors.Wrapf(err, "statting %s", rel)
	}
	if info.IsDir() {
		// A directory moved in from elsewhere.
		return d.scan(ctx, h, d.abs(rel))
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	d.mu.Lock()
	when, ok := d.own[rel]
	if ok && when.Equal(info.ModTime()) {
		d.mu.Unlock()
		return nil
	}
	delete(d.own, rel)
	d.mu.Unlock()

	f, err := h.GetFileByPath(ctx, rel)
	if stderrs.Is(err, meta.ErrNotFound) {
		f = h.NewFile(rel, info.Size())
		if f == nil {
			return nil
		}
	} else if err != nil {
		return errors.Wrapf(err, "looking up %s", rel)
	} else if f.Size == info.Size() && f.Extra[MtimeKey] == mtime(info) {
		return nil
	}

	f.Size = info.Size()
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[MtimeKey] = mtime(info)
	return h.UpdateFile(ctx, f)
}

func (d *Driver) removed(ctx context.Context, h driver.Handle, rel string) error {
	d.mu.Lock()
	when, ok := d.own[rel]
	if ok && when.IsZero() {
		delete(d.own, rel)
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	f, err := h.GetFileByPath(ctx, rel)
	if stderrs.Is(err, meta.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "looking up %s", rel)
	}
	return h.DeleteFile(ctx, f)
}

func (d *Driver) GetChunk(_ context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	fh, err := os.Open(d.abs(f.Path))
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil, driver.DriverErrorf("%s not found", f.Path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", f.Path)
	}
	defer fh.Close()

	buf := make([]byte, size)
	n, err := fh.ReadAt(buf, offset)
	if err != nil && !stderrs.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "reading %s at offset %d", f.Path, offset)
	}
	return buf[:n], nil
}

func (d *Driver) GetFile(_ context.Context, f *meta.File) ([]byte, error) {
	data, err := os.ReadFile(d.abs(f.Path))
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil, driver.DriverErrorf("%s not found", f.Path)
	}
	return data, errors.Wrapf(err, "reading %s", f.Path)
}

func (d *Driver) StartUpload(_ context.Context, f *meta.File) error {
	name := d.staging(f)
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return errors.Wrapf(err, "creating staging dir in %s", d.root)
	}
	fh, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating staging file for %s", f.Path)
	}
	return fh.Close()
}

func (d *Driver) RestartUpload(_ context.Context, f *meta.File, offset int64) error {
	name := d.staging(f)
	info, err := os.Stat(name)
	if stderrs.Is(err, fs.ErrNotExist) {
		return driver.DriverErrorf("no partial upload of %s", f.Path)
	}
	if err != nil {
		return errors.Wrapf(err, "statting staging file for %s", f.Path)
	}
	if info.Size() < offset {
		return driver.DriverErrorf("partial upload of %s has %d bytes, need %d", f.Path, info.Size(), offset)
	}
	return errors.Wrapf(os.Truncate(name, offset), "truncating staging file for %s", f.Path)
}

func (d *Driver) UploadChunk(_ context.Context, f *meta.File, offset int64, data []byte) error {
	fh, err := os.OpenFile(d.staging(f), os.O_WRONLY, 0644)
	if stderrs.Is(err, fs.ErrNotExist) {
		return driver.DriverErrorf("no upload of %s in progress", f.Path)
	}
	if err != nil {
		return errors.Wrapf(err, "opening staging file for %s", f.Path)
	}
	defer fh.Close()

	if _, err = fh.WriteAt(data, offset); err != nil {
		return errors.Wrapf(err, "writing %s at offset %d", f.Path, offset)
	}
	return errors.Wrapf(fh.Close(), "closing staging file for %s", f.Path)
}

// EndUpload moves the staged file into place.
// An upload of an empty file may end without any chunk,
// so a missing staging file is an empty one.
func (d *Driver) EndUpload(_ context.Context, f *meta.File) error {
	name := d.staging(f)
	if _, err := os.Stat(name); stderrs.Is(err, fs.ErrNotExist) {
		if err = os.MkdirAll(filepath.Dir(name), 0755); err != nil {
			return errors.Wrapf(err, "making staging dir for %s", f.Path)
		}
		if err = os.WriteFile(name, nil, 0644); err != nil {
			return errors.Wrapf(err, "creating empty staging file for %s", f.Path)
		}
	}
	return d.place(name, f)
}

func (d *Driver) place(from string, f *meta.File) error {
	dest := d.abs(f.Path)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, "making dir for %s", f.Path)
	}
	if err := os.Rename(from, dest); err != nil {
		return errors.Wrapf(err, "renaming into %s", f.Path)
	}
	return d.remember(f, dest)
}

// remember records the modification time of the file the driver just wrote,
// in f's extra and in the set of the driver's own changes.
func (d *Driver) remember(f *meta.File, dest string) error {
	info, err := os.Stat(dest)
	if err != nil {
		return errors.Wrapf(err, "statting %s", f.Path)
	}
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[MtimeKey] = mtime(info)
	d.expect(f.Path, info.ModTime())
	return nil
}

func (d *Driver) AbortUpload(_ context.Context, f *meta.File) error {
	err := os.Remove(d.staging(f))
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, "removing staging file for %s", f.Path)
}

func (d *Driver) DeleteFile(_ context.Context, f *meta.File) error {
	d.expect(f.Path, time.Time{})
	err := os.Remove(d.abs(f.Path))
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, "removing %s", f.Path)
}

func (d *Driver) MoveFile(_ context.Context, oldFile, newFile *meta.File) error {
	src := d.abs(oldFile.Path)
	if _, err := os.Stat(src); stderrs.Is(err, fs.ErrNotExist) {
		return driver.DriverErrorf("%s not found", oldFile.Path)
	}
	d.expect(oldFile.Path, time.Time{})
	return d.place(src, newFile)
}

var manifest = driver.Manifest{
	Name:        "local",
	Description: "Keeps files in a directory on local disk, watching it for changes.",
	Options: map[string]driver.Option{
		"root":      {Type: driver.String, Description: "directory holding the service's folders"},
		"settle_ms": {Type: driver.Integer, Default: int64(500), Description: "milliseconds a changed file must be quiet before it is reported"},
	},
}

func init() {
	driver.Register(manifest, func(_ context.Context, opts driver.Options) (driver.Driver, error) {
		root := opts.String("root")
		if root == "" {
			return nil, &driver.ConfigError{Option: "root", Msg: "must not be empty"}
		}
		root, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", opts.String("root"))
		}
		if err = os.MkdirAll(root, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating %s", root)
		}
		return New(root, time.Duration(opts.Int("settle_ms"))*time.Millisecond, nil), nil
	})
}
