// Package driver describes the contract between the hub and a storage backend.
//
// A backend adapter (a "driver") is any value.
// What it can do is determined by which of the small interfaces in this package it implements:
// an adapter implements only the operations that make sense for its backend.
// Resolve inspects an adapter once and records its capabilities.
//
// The hub, in turn, hands each adapter a Handle
// through which it reports local changes.
package driver

import (
	"context"
	"io"

	"github.com/bobg/hub/meta"
)

// Driver is a backend adapter.
type Driver interface{}

type (
	// ChunkReader reads a byte range of a file.
	// A short result means end of file.
	ChunkReader interface {
		GetChunk(ctx context.Context, f *meta.File, offset, size int64) ([]byte, error)
	}

	// FileReader reads a whole file.
	FileReader interface {
		GetFile(ctx context.Context, f *meta.File) ([]byte, error)
	}

	// UploadStarter prepares to receive a file.
	UploadStarter interface {
		StartUpload(ctx context.Context, f *meta.File) error
	}

	// UploadRestarter prepares to resume receiving a file from offset,
	// after an interrupted transfer.
	UploadRestarter interface {
		RestartUpload(ctx context.Context, f *meta.File, offset int64) error
	}

	// ChunkWriter receives one chunk of a file.
	ChunkWriter interface {
		UploadChunk(ctx context.Context, f *meta.File, offset int64, data []byte) error
	}

	// FileWriter receives a whole file at once.
	FileWriter interface {
		UploadFile(ctx context.Context, f *meta.File, data []byte) error
	}

	// UploadEnder finishes receiving a file.
	UploadEnder interface {
		EndUpload(ctx context.Context, f *meta.File) error
	}

	// UploadAborter discards a partly received file.
	UploadAborter interface {
		AbortUpload(ctx context.Context, f *meta.File) error
	}

	// Deleter deletes a file.
	Deleter interface {
		DeleteFile(ctx context.Context, f *meta.File) error
	}

	// Mover renames a file natively.
	Mover interface {
		MoveFile(ctx context.Context, oldFile, newFile *meta.File) error
	}

	// ChunkSizer adjusts the chunk size the hub proposes for uploads.
	// It returns the size to use,
	// and false to force single-shot transfer.
	ChunkSizer interface {
		SetChunkSize(requested int64) (int64, bool)
	}

	// Starter begins whatever the adapter does on its own,
	// such as watching for local changes,
	// and reports changes through h.
	// It must return promptly;
	// long-running work belongs in goroutines that stop when ctx is done.
	Starter interface {
		Start(ctx context.Context, h Handle) error
	}
)

// Handle is what the hub offers an adapter.
type Handle interface {
	// UpdateFile reports a new or changed file.
	UpdateFile(ctx context.Context, f *meta.File) error

	// DeleteFile reports a deleted file.
	DeleteFile(ctx context.Context, f *meta.File) error

	// MoveFile reports that f was renamed to newPath.
	// It returns the new file,
	// or nil if newPath lies outside every folder of the service
	// (in which case the move is treated as a deletion).
	MoveFile(ctx context.Context, f *meta.File, newPath string) (*meta.File, error)

	// GetFile looks up a file by folder and name.
	// The error is meta.ErrNotFound if it is not known.
	GetFile(ctx context.Context, folderName, filename string) (*meta.File, error)

	// GetFileByPath looks up a file by its path in the service.
	GetFileByPath(ctx context.Context, path string) (*meta.File, error)

	// NewFile produces the record of a file, at the given path in the service, not yet known to the hub.
	// It returns nil if the path lies outside every folder of the service.
	NewFile(path string, size int64) *meta.File

	// SaveExtra persists f.Extra for the service.
	SaveExtra(ctx context.Context, f *meta.File) error

	// Paths lists the local paths of the service's folders.
	Paths() []string
}

// Caps is the capability set of an adapter.
// Each field is nil when the adapter lacks the capability.
type Caps struct {
	Driver Driver

	ChunkReader     ChunkReader
	FileReader      FileReader
	UploadStarter   UploadStarter
	UploadRestarter UploadRestarter
	ChunkWriter     ChunkWriter
	FileWriter      FileWriter
	UploadEnder     UploadEnder
	UploadAborter   UploadAborter
	Deleter         Deleter
	Mover           Mover
	ChunkSizer      ChunkSizer
	Starter         Starter
	Closer          io.Closer
}

// Resolve determines the capabilities of d.
func Resolve(d Driver) Caps {
	c := Caps{Driver: d}
	c.ChunkReader, _ = d.(ChunkReader)
	c.FileReader, _ = d.(FileReader)
	c.UploadStarter, _ = d.(UploadStarter)
	c.UploadRestarter, _ = d.(UploadRestarter)
	c.ChunkWriter, _ = d.(ChunkWriter)
	c.FileWriter, _ = d.(FileWriter)
	c.UploadEnder, _ = d.(UploadEnder)
	c.UploadAborter, _ = d.(UploadAborter)
	c.Deleter, _ = d.(Deleter)
	c.Mover, _ = d.(Mover)
	c.ChunkSizer, _ = d.(ChunkSizer)
	c.Starter, _ = d.(Starter)
	c.Closer, _ = d.(io.Closer)
	return c
}

// CanProvide tells whether the adapter can serve file content to other services.
func (c Caps) CanProvide() bool {
	return c.ChunkReader != nil || c.FileReader != nil
}

// CanReceive tells whether the adapter can store file content from other services.
func (c Caps) CanReceive() bool {
	return c.ChunkWriter != nil || c.FileWriter != nil
}
