package mem

import (
	"context"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/meta"
)

// NoMove is a Driver without native move support,
// so the hub carries out renames as a delete plus a copy.
type NoMove struct {
	D *Driver
}

var _ driver.ChunkWriter = NoMove{}

func (n NoMove) Start(ctx context.Context, h driver.Handle) error { return n.D.Start(ctx, h) }

func (n NoMove) GetChunk(ctx context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	return n.D.GetChunk(ctx, f, offset, size)
}

func (n NoMove) GetFile(ctx context.Context, f *meta.File) ([]byte, error) {
	return n.D.GetFile(ctx, f)
}

func (n NoMove) StartUpload(ctx context.Context, f *meta.File) error { return n.D.StartUpload(ctx, f) }

func (n NoMove) RestartUpload(ctx context.Context, f *meta.File, offset int64) error {
	return n.D.RestartUpload(ctx, f, offset)
}

func (n NoMove) UploadChunk(ctx context.Context, f *meta.File, offset int64, data []byte) error {
	return n.D.UploadChunk(ctx, f, offset, data)
}

func (n NoMove) UploadFile(ctx context.Context, f *meta.File, data []byte) error {
	return n.D.UploadFile(ctx, f, data)
}

func (n NoMove) EndUpload(ctx context.Context, f *meta.File) error   { return n.D.EndUpload(ctx, f) }
func (n NoMove) AbortUpload(ctx context.Context, f *meta.File) error { return n.D.AbortUpload(ctx, f) }
func (n NoMove) DeleteFile(ctx context.Context, f *meta.File) error  { return n.D.DeleteFile(ctx, f) }

var manifest = driver.Manifest{
	Name:        "mem",
	Description: "Keeps files in memory.",
	Options: map[string]driver.Option{
		"native_move": {Type: driver.Boolean, Default: true, Description: "rename files natively instead of deleting and copying"},
	},
}

func init() {
	driver.Register(manifest, func(_ context.Context, opts driver.Options) (driver.Driver, error) {
		d := New()
		if !opts.Bool("native_move") {
			return NoMove{D: d}, nil
		}
		return d, nil
	})
}
