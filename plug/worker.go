package plug

import (
	"context"
	stderrs "errors"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/meta"
	"github.com/bobg/hub/router"
	"github.com/bobg/hub/wake"
)

// ErrAbort matches every *AbortError.
var ErrAbort = errors.New("aborted")

// errStopped is the cause of an abort requested by the Dealer or by shutdown.
var errStopped = errors.New("stopped")

// AbortError is the outcome of a worker that did not complete.
type AbortError struct {
	Op      string
	FID     string
	Service string
	Err     error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s of %s to %s aborted: %s", e.Op, e.FID, e.Service, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

func (e *AbortError) Is(target error) bool {
	return target == ErrAbort
}

// Retryable tells whether the work may succeed if tried again later
// without anything else changing.
// A retryable transfer keeps its transfer record so that it resumes on the next start.
func (e *AbortError) Retryable() bool {
	return retryable(e.Err)
}

func retryable(err error) bool {
	var (
		se *driver.ServiceError
		ta *driver.TryAgainError
	)
	switch {
	case stderrs.Is(err, errStopped),
		stderrs.Is(err, context.Canceled),
		stderrs.Is(err, context.DeadlineExceeded),
		stderrs.As(err, &se),
		stderrs.As(err, &ta):
		return true
	}
	return false
}

// call invokes a driver operation under the retry policy.
func (p *Plug) call(ctx context.Context, op string, f *meta.File, fn func() error) error {
	return errors.Wrapf(p.retry.Call(ctx, fn), "%s %s", op, f.Filename)
}

// transfer copies the file with the given id from source into this service.
//
// START: resume from the transfer record, or begin afresh at offset 0.
// TRANSFER: pull chunks from the source's router and hand them to the driver,
// persisting the offset after each one.
// END: on success mark this service up to date and forget the transfer record;
// on failure abort the upload, and forget the record unless the failure is retryable.
func (p *Plug) transfer(ctx context.Context, w *worker, fid, source string, resume *meta.Transfer) {
	f, err := p.getFile(ctx, fid)
	if stderrs.Is(err, meta.ErrNotFound) {
		p.logger.Printf("%s: file %s is gone, dropping its transfer", p.name, fid)
		p.forgetTransfer(ctx, fid)
		return
	}
	if err != nil {
		p.logger.Printf("ERROR %s: loading %s for transfer: %s", p.name, fid, err)
		return
	}

	t := &transferState{
		p:      p,
		w:      w,
		f:      f,
		source: chooseSource(f, source, p.name),
	}
	if t.source == "" {
		p.logger.Printf("ERROR %s: no service has an up-to-date copy of %s", p.name, f.Filename)
		p.forgetTransfer(ctx, fid)
		return
	}
	if resume != nil && resume.Source == t.source {
		t.restart = true
		t.offset = resume.Offset
	}

	err = t.start(ctx)
	if err == nil {
		err = t.run(ctx)
	}
	t.end(ctx, err)
}

// chooseSource picks the service to pull f from:
// preferred if it is up to date,
// otherwise any other up-to-date service.
func chooseSource(f *meta.File, preferred, self string) string {
	if preferred != "" && preferred != self && f.IsUptodate(preferred) {
		return preferred
	}
	for _, s := range f.UptodateList() {
		if s != self {
			return s
		}
	}
	return ""
}

type transferState struct {
	p       *Plug
	w       *worker
	f       *meta.File
	source  string
	src     router.Source
	chunked bool
	size    int64
	restart bool
	offset  int64
}

func (t *transferState) start(ctx context.Context) error {
	p := t.p

	t.chunked = p.caps.ChunkWriter != nil
	t.size = p.chunkSize
	if t.chunked && p.caps.ChunkSizer != nil {
		n, ok := p.caps.ChunkSizer.SetChunkSize(t.size)
		switch {
		case !ok:
			t.chunked = false
		case n > 0:
			t.size = n
		}
	}
	if p.caps.ChunkWriter == nil && p.caps.FileWriter == nil {
		return driver.DriverErrorf("driver of %s can not receive files", p.name)
	}

	// Small files go in one piece.
	if t.f.Size < 2*t.size {
		t.chunked = false
	}
	if !t.chunked {
		t.restart = false
	}

	if t.restart {
		if p.caps.UploadRestarter != nil {
			err := p.call(ctx, "restart_upload", t.f, func() error {
				return p.caps.UploadRestarter.RestartUpload(ctx, t.f, t.offset)
			})
			if err != nil && !retryable(err) {
				p.logger.Printf("%s: cannot resume %s at %d, starting over: %s", p.name, t.f.Filename, t.offset, err)
				t.restart = false
			} else if err != nil {
				return err
			}
		}
		if t.restart {
			p.logger.Printf("%s: resuming %s from %s at offset %d", p.name, t.f.Filename, t.source, t.offset)
			return nil
		}
	}

	t.offset = 0
	if err := meta.PutTransfer(ctx, p.store, p.name, &meta.Transfer{FID: t.f.FID, Source: t.source}); err != nil {
		return &driver.ServiceError{Err: err}
	}
	if p.caps.UploadStarter != nil {
		return p.call(ctx, "start_upload", t.f, func() error {
			return p.caps.UploadStarter.StartUpload(ctx, t.f)
		})
	}
	return nil
}

func (t *transferState) run(ctx context.Context) error {
	src, err := t.p.dialer.Dial(ctx, t.source)
	if err != nil {
		return &driver.ServiceError{Err: errors.Wrapf(err, "dialing %s", t.source)}
	}
	t.src = src

	if !t.chunked {
		return t.runOneShot(ctx)
	}

	p := t.p
	for t.offset < t.f.Size {
		if err := t.checkStop(ctx); err != nil {
			return err
		}

		data, err := t.pull(ctx, &router.Request{
			Command: router.GetChunk,
			FID:     t.f.FID,
			Offset:  t.offset,
			Size:    t.size,
		})
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return driver.DriverErrorf("%s sent no data for %s at offset %d of %d", t.source, t.f.Filename, t.offset, t.f.Size)
		}

		offset := t.offset
		err = p.call(ctx, "upload_chunk", t.f, func() error {
			return p.caps.ChunkWriter.UploadChunk(ctx, t.f, offset, data)
		})
		if err != nil {
			return err
		}
		t.offset += int64(len(data))

		err = meta.PutTransfer(ctx, p.store, p.name, &meta.Transfer{FID: t.f.FID, Source: t.source, Offset: t.offset})
		if err != nil {
			return &driver.ServiceError{Err: err}
		}
	}
	return nil
}

func (t *transferState) runOneShot(ctx context.Context) error {
	if err := t.checkStop(ctx); err != nil {
		return err
	}
	data, err := t.pull(ctx, &router.Request{Command: router.GetFile, FID: t.f.FID})
	if err != nil {
		return err
	}
	p := t.p
	if p.caps.FileWriter != nil {
		return p.call(ctx, "upload_file", t.f, func() error {
			return p.caps.FileWriter.UploadFile(ctx, t.f, data)
		})
	}
	if len(data) == 0 {
		return nil
	}
	return p.call(ctx, "upload_chunk", t.f, func() error {
		return p.caps.ChunkWriter.UploadChunk(ctx, t.f, 0, data)
	})
}

// pull sends req to the source.
// Failing to reach the source is retryable; a refusal is not.
func (t *transferState) pull(ctx context.Context, req *router.Request) ([]byte, error) {
	reply, err := t.src.Pull(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var se *driver.ServiceError
		if stderrs.As(err, &se) {
			return nil, err
		}
		return nil, &driver.ServiceError{Err: err}
	}
	if err = reply.Err(); err != nil {
		return nil, &driver.DriverError{Err: errors.Wrapf(err, "pulling %s from %s", t.f.Filename, t.source)}
	}
	return reply.Payload, nil
}

func (t *transferState) checkStop(ctx context.Context) error {
	if t.w.stopped() {
		return errStopped
	}
	return ctx.Err()
}

func (t *transferState) end(ctx context.Context, err error) {
	p := t.p

	if err == nil {
		err = t.checkStop(ctx)
	}
	if err == nil && p.caps.UploadEnder != nil {
		err = p.call(ctx, "end_upload", t.f, func() error {
			return p.caps.UploadEnder.EndUpload(ctx, t.f)
		})
	}

	if err == nil {
		b := kv.NewBatch(true)
		b.Delete(meta.TransferKey(p.name, t.f.FID))
		meta.PutUptodate(b, t.f, p.name, p.now())
		if err = meta.PutExtra(b, t.f, p.name); err == nil {
			err = p.store.Write(ctx, b)
		}
		if err != nil {
			p.logger.Printf("ERROR %s: recording transfer of %s: %s", p.name, t.f.Filename, err)
			return
		}
		p.logger.Printf("%s: transferred %s from %s (%d bytes)", p.name, t.f.Filename, t.source, t.f.Size)
		return
	}

	aerr := &AbortError{Op: "transfer", FID: t.f.FID, Service: p.name, Err: err}
	if stderrs.Is(err, errStopped) {
		p.logger.Printf("%s: %s", p.name, aerr)
	} else {
		p.logger.Printf("ERROR %s: %s", p.name, aerr)
	}

	if p.caps.UploadAborter != nil {
		// Use a fresh context: ctx may be the reason for the abort.
		actx := context.WithoutCancel(ctx)
		abortErr := p.call(actx, "abort_upload", t.f, func() error {
			return p.caps.UploadAborter.AbortUpload(actx, t.f)
		})
		if abortErr != nil {
			p.logger.Printf("ERROR %s: %s", p.name, abortErr)
		}
	}

	if !aerr.Retryable() {
		p.forgetTransfer(ctx, t.f.FID)
	}
}

func (p *Plug) forgetTransfer(ctx context.Context, fid string) {
	if err := meta.DeleteTransfer(ctx, p.store, p.name, fid); err != nil {
		p.logger.Printf("ERROR %s: deleting transfer of %s: %s", p.name, fid, err)
	}
}

// deletion removes a file from this service
// and gives up this service's ownership of it,
// even if the driver fails to remove it.
func (p *Plug) deletion(ctx context.Context, w *worker, ev *meta.Event) {
	f, err := p.getFile(ctx, ev.FID)
	if stderrs.Is(err, meta.ErrNotFound) {
		return
	}
	if err != nil {
		p.logger.Printf("ERROR %s: loading %s for deletion: %s", p.name, ev.FID, err)
		return
	}
	if w.stopped() {
		return
	}

	p.forgetTransfer(ctx, f.FID)

	var delErr error
	if p.caps.Deleter != nil {
		delErr = p.call(ctx, "delete_file", f, func() error {
			return p.caps.Deleter.DeleteFile(ctx, f)
		})
		if delErr != nil {
			p.logger.Printf("ERROR %s: %s", p.name, &AbortError{Op: "deletion", FID: f.FID, Service: p.name, Err: delErr})
		}
	}

	// The service stops tracking the file either way.
	if _, err = meta.Relinquish(ctx, p.store, f.FID, p.name); err != nil {
		p.logger.Printf("ERROR %s: %s", p.name, err)
		return
	}
	if delErr == nil {
		p.logger.Printf("%s: deleted %s", p.name, f.Filename)
	}
}

// move renames a file in this service.
// With a native move it is a single driver call.
// Otherwise, or if this service does not hold a current copy of the old file,
// the old file is deleted and the new one transferred in full.
func (p *Plug) move(ctx context.Context, w *worker, ev *meta.Event) {
	nf, err := p.getFile(ctx, ev.NewFID)
	if stderrs.Is(err, meta.ErrNotFound) {
		p.logger.Printf("%s: target of move of %s is gone", p.name, ev.FID)
		return
	}
	if err != nil {
		p.logger.Printf("ERROR %s: loading %s for move: %s", p.name, ev.NewFID, err)
		return
	}

	old, err := p.getFile(ctx, ev.FID)
	switch {
	case stderrs.Is(err, meta.ErrNotFound):
		old = nil
	case err != nil:
		p.logger.Printf("ERROR %s: loading %s for move: %s", p.name, ev.FID, err)
		return
	}
	if w.stopped() {
		return
	}

	if old != nil && old.IsUptodate(p.name) && p.caps.Mover != nil {
		err = p.call(ctx, "move_file", old, func() error {
			return p.caps.Mover.MoveFile(ctx, old, nf)
		})
		if err == nil {
			b := kv.NewBatch(true)
			meta.PutUptodate(b, nf, p.name, p.now())
			if err = meta.PutExtra(b, nf, p.name); err == nil {
				err = p.store.Write(ctx, b)
			}
			if err == nil {
				_, err = meta.Relinquish(ctx, p.store, old.FID, p.name)
			}
			if err != nil {
				p.logger.Printf("ERROR %s: recording move of %s: %s", p.name, old.Filename, err)
				return
			}
			p.logger.Printf("%s: moved %s to %s", p.name, old.Filename, nf.Filename)
			return
		}
		p.logger.Printf("ERROR %s: %s, falling back to copy", p.name, err)
	}

	if old != nil {
		p.forgetTransfer(ctx, old.FID)
		if p.caps.Deleter != nil {
			err = p.call(ctx, "delete_file", old, func() error {
				return p.caps.Deleter.DeleteFile(ctx, old)
			})
			if err != nil {
				p.logger.Printf("ERROR %s: %s", p.name, err)
			}
		}
		if _, err = meta.Relinquish(ctx, p.store, old.FID, p.name); err != nil {
			p.logger.Printf("ERROR %s: %s", p.name, err)
		}
	}

	// The copy runs as an ordinary transfer of the new file,
	// so the Dealer keeps it to one worker per file.
	b := kv.NewBatch(true)
	err = meta.PutEvent(b, p.name, &meta.Event{FID: nf.FID, Command: meta.Update, Source: chooseSource(nf, ev.Source, p.name)})
	if err == nil {
		err = p.store.Write(ctx, b)
	}
	if err != nil {
		p.logger.Printf("ERROR %s: queueing transfer of %s: %s", p.name, nf.Filename, err)
		return
	}
	p.bus.Notify(wake.Service(p.name))
}
