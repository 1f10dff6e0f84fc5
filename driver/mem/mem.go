// Package mem implements an in-memory driver.
// It supports every capability,
// which makes it the reference adapter for tests.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/meta"
)

var (
	_ driver.ChunkReader     = &Driver{}
	_ driver.FileReader      = &Driver{}
	_ driver.UploadStarter   = &Driver{}
	_ driver.UploadRestarter = &Driver{}
	_ driver.ChunkWriter     = &Driver{}
	_ driver.FileWriter      = &Driver{}
	_ driver.UploadEnder     = &Driver{}
	_ driver.UploadAborter   = &Driver{}
	_ driver.Deleter         = &Driver{}
	_ driver.Mover           = &Driver{}
	_ driver.Starter         = &Driver{}
)

// Driver keeps files in memory, keyed by path.
type Driver struct {
	mu      sync.Mutex
	files   map[string][]byte
	partial map[string][]byte
	h       driver.Handle
}

// New produces a new, empty Driver.
func New() *Driver {
	return &Driver{
		files:   make(map[string][]byte),
		partial: make(map[string][]byte),
	}
}

// Start records h, for reporting local changes.
func (d *Driver) Start(_ context.Context, h driver.Handle) error {
	d.mu.Lock()
	d.h = h
	d.mu.Unlock()
	return nil
}

func (d *Driver) handle() (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.h == nil {
		return nil, errors.New("driver not started")
	}
	return d.h, nil
}

// Write stores data at path as a local change and reports it to the hub.
func (d *Driver) Write(ctx context.Context, path string, data []byte) error {
	h, err := d.handle()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.files[path] = append([]byte{}, data...)
	d.mu.Unlock()

	f, err := h.GetFileByPath(ctx, path)
	if errors.Is(err, meta.ErrNotFound) {
		f = h.NewFile(path, int64(len(data)))
		if f == nil {
			return nil // outside every folder
		}
	} else if err != nil {
		return err
	}
	f.Size = int64(len(data))
	return h.UpdateFile(ctx, f)
}

// Remove deletes path as a local change and reports it to the hub.
func (d *Driver) Remove(ctx context.Context, path string) error {
	h, err := d.handle()
	if err != nil {
		return err
	}

	d.mu.Lock()
	delete(d.files, path)
	d.mu.Unlock()

	f, err := h.GetFileByPath(ctx, path)
	if errors.Is(err, meta.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return h.DeleteFile(ctx, f)
}

// Rename moves oldPath to newPath as a local change and reports it to the hub.
func (d *Driver) Rename(ctx context.Context, oldPath, newPath string) error {
	h, err := d.handle()
	if err != nil {
		return err
	}

	d.mu.Lock()
	data, ok := d.files[oldPath]
	if ok {
		delete(d.files, oldPath)
		d.files[newPath] = data
	}
	d.mu.Unlock()
	if !ok {
		return errors.Errorf("%s not found", oldPath)
	}

	f, err := h.GetFileByPath(ctx, oldPath)
	if errors.Is(err, meta.ErrNotFound) {
		return d.Write(ctx, newPath, data)
	}
	if err != nil {
		return err
	}
	_, err = h.MoveFile(ctx, f, newPath)
	return err
}

// Read returns the content of the file at path.
func (d *Driver) Read(path string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[path]
	return append([]byte{}, data...), ok
}

// Paths lists the stored files.
func (d *Driver) Paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []string
	for p := range d.files {
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}

func (d *Driver) GetChunk(_ context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.files[f.Path]
	if !ok {
		return nil, driver.DriverErrorf("%s not found", f.Path)
	}
	if offset >= int64(len(data)) {
		return []byte{}, nil
	}
	end := offset + size
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return append([]byte{}, data[offset:end]...), nil
}

func (d *Driver) GetFile(_ context.Context, f *meta.File) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.files[f.Path]
	if !ok {
		return nil, driver.DriverErrorf("%s not found", f.Path)
	}
	return append([]byte{}, data...), nil
}

func (d *Driver) StartUpload(_ context.Context, f *meta.File) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.partial[f.Path] = []byte{}
	return nil
}

func (d *Driver) RestartUpload(_ context.Context, f *meta.File, offset int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, ok := d.partial[f.Path]
	if !ok || int64(len(buf)) < offset {
		return driver.DriverErrorf("no partial upload of %s up to offset %d", f.Path, offset)
	}
	d.partial[f.Path] = buf[:offset]
	return nil
}

func (d *Driver) UploadChunk(_ context.Context, f *meta.File, offset int64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, ok := d.partial[f.Path]
	if !ok {
		return driver.DriverErrorf("no upload of %s in progress", f.Path)
	}
	if offset > int64(len(buf)) {
		return driver.DriverErrorf("chunk of %s at offset %d leaves a gap after %d", f.Path, offset, len(buf))
	}
	d.partial[f.Path] = append(buf[:offset], data...)
	return nil
}

func (d *Driver) UploadFile(_ context.Context, f *meta.File, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[f.Path] = append([]byte{}, data...)
	delete(d.partial, f.Path)
	return nil
}

func (d *Driver) EndUpload(_ context.Context, f *meta.File) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if buf, ok := d.partial[f.Path]; ok {
		d.files[f.Path] = buf
		delete(d.partial, f.Path)
	}
	return nil
}

func (d *Driver) AbortUpload(_ context.Context, f *meta.File) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.partial, f.Path)
	return nil
}

func (d *Driver) DeleteFile(_ context.Context, f *meta.File) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, f.Path)
	return nil
}

func (d *Driver) MoveFile(_ context.Context, oldFile, newFile *meta.File) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.files[oldFile.Path]
	if !ok {
		return driver.DriverErrorf("%s not found", oldFile.Path)
	}
	delete(d.files, oldFile.Path)
	d.files[newFile.Path] = data
	return nil
}

// Partial returns the content received so far of an upload in progress.
func (d *Driver) Partial(path string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.partial[path]
	return append([]byte{}, buf...), ok
}

// SetPartial seeds a partial upload,
// as if an earlier process had received data and then crashed.
func (d *Driver) SetPartial(path string, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.partial[path] = append([]byte{}, data...)
}
