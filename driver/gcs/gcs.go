// Package gcs implements a driver for Google Cloud Storage.
//
// Each chunk of an incoming file is stored as its own object in a staging area of the bucket,
// so an interrupted upload can resume in a later process.
// EndUpload composes the chunks into the final object.
package gcs

import (
	"context"
	stderrs "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/meta"
)

var (
	_ driver.ChunkReader     = &Driver{}
	_ driver.UploadStarter   = &Driver{}
	_ driver.UploadRestarter = &Driver{}
	_ driver.ChunkWriter     = &Driver{}
	_ driver.UploadEnder     = &Driver{}
	_ driver.UploadAborter   = &Driver{}
	_ driver.Deleter         = &Driver{}
	_ driver.Mover           = &Driver{}
	_ driver.Starter         = &Driver{}
)

// GenerationKey is the extra key under which the driver remembers an object's generation.
const GenerationKey = "generation"

// stagingDir is where partial uploads live, beneath the prefix.
const stagingDir = ".hub"

// maxCompose is the most sources one compose request may name.
const maxCompose = 32

// Driver keeps files as objects in a bucket.
type Driver struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	poll   time.Duration
	logger *log.Logger
}

// New produces a Driver keeping objects in bucket beneath prefix.
// When poll is positive,
// the driver rescans its folders at that interval for objects changed by others.
// The client, if not nil, is closed by Close.
func New(client *storage.Client, bucket *storage.BucketHandle, prefix string, poll time.Duration, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		poll:   poll,
		logger: logger,
	}
}

func (d *Driver) objName(p string) string {
	if d.prefix == "" {
		return p
	}
	return d.prefix + "/" + p
}

func (d *Driver) relName(name string) (string, bool) {
	if d.prefix != "" {
		if !strings.HasPrefix(name, d.prefix+"/") {
			return "", false
		}
		name = strings.TrimPrefix(name, d.prefix+"/")
	}
	if name == "" || strings.HasSuffix(name, "/") || strings.HasPrefix(name, stagingDir+"/") {
		return "", false
	}
	return name, true
}

func (d *Driver) stagingPrefix(f *meta.File) string {
	return d.objName(path.Join(stagingDir, f.FID)) + "/"
}

func (d *Driver) partName(f *meta.File, offset int64) string {
	return fmt.Sprintf("%s%020d", d.stagingPrefix(f), offset)
}

// classify converts a storage error to the driver error taxonomy.
func classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if stderrs.Is(err, storage.ErrObjectNotExist) || stderrs.Is(err, storage.ErrBucketNotExist) {
		return &driver.DriverError{Err: errors.Wrap(err, msg)}
	}
	var e *googleapi.Error
	if stderrs.As(err, &e) {
		switch {
		case e.Code == http.StatusTooManyRequests || e.Code >= 500:
			return driver.TryAgain(errors.Wrap(err, msg))
		case e.Code == http.StatusNotFound:
			return &driver.DriverError{Err: errors.Wrap(err, msg)}
		}
	}
	return &driver.ServiceError{Err: errors.Wrap(err, msg)}
}

// Start scans the folders of the service for objects the hub has not seen,
// and keeps rescanning if the driver polls.
func (d *Driver) Start(ctx context.Context, h driver.Handle) error {
	if err := d.scan(ctx, h); err != nil {
		return err
	}
	if d.poll <= 0 {
		return nil
	}

	go func() {
		ticker := time.NewTicker(d.poll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := d.scan(ctx, h); err != nil {
					d.logger.Printf("ERROR scanning bucket: %s", err)
				}
			}
		}
	}()
	return nil
}

func (d *Driver) scan(ctx context.Context, h driver.Handle) error {
	for _, p := range h.Paths() {
		q := &storage.Query{}
		if p != "." {
			q.Prefix = d.objName(p) + "/"
		} else if d.prefix != "" {
			q.Prefix = d.prefix + "/"
		}
		iter := d.bucket.Objects(ctx, q)
		for {
			attrs, err := iter.Next()
			if stderrs.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				return classify(err, "listing objects under %s", p)
			}
			rel, ok := d.relName(attrs.Name)
			if !ok {
				continue
			}
			if err = d.seen(ctx, h, rel, attrs); err != nil {
				d.logger.Printf("ERROR scanning %s: %s", rel, err)
			}
		}
	}
	return nil
}

func (d *Driver) seen(ctx context.Context, h driver.Handle, rel string, attrs *storage.ObjectAttrs) error {
	gen := strconv.FormatInt(attrs.Generation, 10)

	f, err := h.GetFileByPath(ctx, rel)
	if stderrs.Is(err, meta.ErrNotFound) {
		f = h.NewFile(rel, attrs.Size)
		if f == nil {
			return nil
		}
	} else if err != nil {
		return err
	} else if f.Extra[GenerationKey] == gen {
		return nil
	}

	f.Size = attrs.Size
	if attrs.ContentType != "" {
		f.Mimetype = attrs.ContentType
	}
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[GenerationKey] = gen
	return h.UpdateFile(ctx, f)
}

func (d *Driver) GetChunk(ctx context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	name := d.objName(f.Path)
	r, err := d.bucket.Object(name).NewRangeReader(ctx, offset, size)
	var e *googleapi.Error
	if stderrs.As(err, &e) && e.Code == http.StatusRequestedRangeNotSatisfiable {
		return []byte{}, nil
	}
	if err != nil {
		return nil, classify(err, "reading %s at offset %d", name, offset)
	}
	defer r.Close()

	buf := make([]byte, size)
	n, err := io.ReadFull(r, buf)
	if err != nil && !stderrs.Is(err, io.EOF) && !stderrs.Is(err, io.ErrUnexpectedEOF) {
		return nil, classify(err, "reading %s at offset %d", name, offset)
	}
	return buf[:n], nil
}

func (d *Driver) StartUpload(ctx context.Context, f *meta.File) error {
	return d.clearParts(ctx, f, 0)
}

// RestartUpload keeps the staged chunks below offset,
// provided they cover it without a gap.
func (d *Driver) RestartUpload(ctx context.Context, f *meta.File, offset int64) error {
	parts, err := d.parts(ctx, f)
	if err != nil {
		return err
	}
	var have int64
	for _, part := range parts {
		if part.offset >= offset {
			break
		}
		if part.offset != have {
			return driver.DriverErrorf("staged chunks of %s have a gap at %d", f.Path, have)
		}
		have += part.size
	}
	if have != offset {
		return driver.DriverErrorf("staged chunks of %s cover %d bytes, need %d", f.Path, have, offset)
	}
	return d.clearParts(ctx, f, offset)
}

func (d *Driver) UploadChunk(ctx context.Context, f *meta.File, offset int64, data []byte) error {
	return d.write(ctx, d.partName(f, offset), "", data)
}

func (d *Driver) write(ctx context.Context, name, contentType string, data []byte) error {
	w := d.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return classify(err, "writing %s", name)
	}
	return classify(w.Close(), "writing %s", name)
}

// EndUpload composes the staged chunks into the final object.
func (d *Driver) EndUpload(ctx context.Context, f *meta.File) error {
	parts, err := d.parts(ctx, f)
	if err != nil {
		return err
	}

	var (
		name = d.objName(f.Path)
		dst  = d.bucket.Object(name)
	)

	if len(parts) == 0 {
		if err = d.write(ctx, name, f.Mimetype, nil); err != nil {
			return err
		}
	} else {
		var srcs []*storage.ObjectHandle
		for i, part := range parts {
			srcs = append(srcs, d.bucket.Object(part.name))
			if len(srcs) < maxCompose && i < len(parts)-1 {
				continue
			}
			c := dst.ComposerFrom(srcs...)
			c.ContentType = f.Mimetype
			if _, err = c.Run(ctx); err != nil {
				return classify(err, "composing %s", name)
			}
			srcs = []*storage.ObjectHandle{dst}
		}
	}

	attrs, err := dst.Attrs(ctx)
	if err != nil {
		return classify(err, "getting attrs of %s", name)
	}
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[GenerationKey] = strconv.FormatInt(attrs.Generation, 10)

	return d.clearParts(ctx, f, 0)
}

func (d *Driver) AbortUpload(ctx context.Context, f *meta.File) error {
	return d.clearParts(ctx, f, 0)
}

type part struct {
	name   string
	offset int64
	size   int64
}

// parts lists the staged chunks of f in offset order.
func (d *Driver) parts(ctx context.Context, f *meta.File) ([]part, error) {
	prefix := d.stagingPrefix(f)
	iter := d.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var result []part
	for {
		attrs, err := iter.Next()
		if stderrs.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classify(err, "listing staged chunks of %s", f.Path)
		}
		offset, err := strconv.ParseInt(strings.TrimPrefix(attrs.Name, prefix), 10, 64)
		if err != nil {
			continue
		}
		result = append(result, part{name: attrs.Name, offset: offset, size: attrs.Size})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].offset < result[j].offset })
	return result, nil
}

// clearParts deletes the staged chunks of f at or after offset.
func (d *Driver) clearParts(ctx context.Context, f *meta.File, offset int64) error {
	parts, err := d.parts(ctx, f)
	if err != nil {
		return err
	}
	for _, part := range parts {
		if part.offset < offset {
			continue
		}
		err = d.bucket.Object(part.name).Delete(ctx)
		if err != nil && !stderrs.Is(err, storage.ErrObjectNotExist) {
			return classify(err, "deleting %s", part.name)
		}
	}
	return nil
}

func (d *Driver) DeleteFile(ctx context.Context, f *meta.File) error {
	name := d.objName(f.Path)
	err := d.bucket.Object(name).Delete(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return classify(err, "deleting %s", name)
}

func (d *Driver) MoveFile(ctx context.Context, oldFile, newFile *meta.File) error {
	var (
		oldName = d.objName(oldFile.Path)
		newName = d.objName(newFile.Path)
		src     = d.bucket.Object(oldName)
	)
	attrs, err := d.bucket.Object(newName).CopierFrom(src).Run(ctx)
	if err != nil {
		return classify(err, "copying %s to %s", oldName, newName)
	}
	if newFile.Extra == nil {
		newFile.Extra = make(map[string]string)
	}
	newFile.Extra[GenerationKey] = strconv.FormatInt(attrs.Generation, 10)

	err = src.Delete(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return classify(err, "deleting %s", oldName)
}

// Close closes the storage client.
func (d *Driver) Close() error {
	if d.client == nil {
		return nil
	}
	return d.client.Close()
}

var manifest = driver.Manifest{
	Name:        "gcs",
	Description: "Keeps files as objects in a Google Cloud Storage bucket.",
	Options: map[string]driver.Option{
		"bucket": {Type: driver.String, Description: "bucket name"},
		"prefix": {Type: driver.String, Default: "", Description: "object-name prefix of the service's folders"},
		"creds":  {Type: driver.String, Default: "", Description: "credentials file (default: application default credentials)"},
		"poll_s": {Type: driver.Integer, Default: int64(0), Description: "seconds between rescans of the bucket (0 disables)"},
	},
}

func init() {
	driver.Register(manifest, func(ctx context.Context, opts driver.Options) (driver.Driver, error) {
		var options []option.ClientOption
		if creds := opts.String("creds"); creds != "" {
			options = append(options, option.WithCredentialsFile(creds))
		}
		c, err := storage.NewClient(ctx, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		poll := time.Duration(opts.Int("poll_s")) * time.Second
		return New(c, c.Bucket(opts.String("bucket")), opts.String("prefix"), poll, nil), nil
	})
}
