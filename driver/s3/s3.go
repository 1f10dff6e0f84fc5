// Package s3 implements a driver for S3-compatible object storage.
//
// Incoming files are written as multipart uploads, one part per chunk.
// Upload ids are found again by listing the bucket's uploads,
// so an interrupted transfer can resume in a later process.
package s3

import (
	"bytes"
	"context"
	stderrs "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

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
	_ driver.ChunkSizer      = &Driver{}
	_ driver.Starter         = &Driver{}
)

// MinPartSize is the smallest part S3 accepts, except for the last one.
const MinPartSize = 5 << 20

// ETagKey is the extra key under which the driver remembers an object's etag.
const ETagKey = "etag"

// Driver keeps files as objects in a bucket.
type Driver struct {
	core   minio.Core
	bucket string
	prefix string
	poll   time.Duration
	logger *log.Logger

	mu      sync.Mutex
	chunk   int64
	uploads map[string]string // object name -> upload id
}

// New produces a Driver keeping objects in bucket beneath prefix.
// When poll is positive,
// the driver rescans its folders at that interval for objects changed by others.
func New(client *minio.Client, bucket, prefix string, poll time.Duration, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		core:    minio.Core{Client: client},
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		poll:    poll,
		logger:  logger,
		chunk:   MinPartSize,
		uploads: make(map[string]string),
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
	if name == "" || strings.HasSuffix(name, "/") {
		return "", false
	}
	return name, true
}

// classify converts a storage error to the driver error taxonomy.
func classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 || resp.Code == "SlowDown":
		return driver.TryAgain(errors.Wrap(err, msg))
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchUpload" || resp.Code == "NoSuchBucket":
		return &driver.DriverError{Err: errors.Wrap(err, msg)}
	}
	return &driver.ServiceError{Err: errors.Wrap(err, msg)}
}

func notFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchUpload"
}

// SetChunkSize raises the requested size to the minimum part size.
func (d *Driver) SetChunkSize(requested int64) (int64, bool) {
	if requested < MinPartSize {
		requested = MinPartSize
	}
	d.mu.Lock()
	d.chunk = requested
	d.mu.Unlock()
	return requested, true
}

func (d *Driver) chunkSize() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chunk
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
					d.logger.Printf("ERROR scanning bucket %s: %s", d.bucket, err)
				}
			}
		}
	}()
	return nil
}

func (d *Driver) scan(ctx context.Context, h driver.Handle) error {
	for _, p := range h.Paths() {
		var prefix string
		if p != "." {
			prefix = d.objName(p) + "/"
		} else if d.prefix != "" {
			prefix = d.prefix + "/"
		}
		for obj := range d.core.Client.ListObjects(ctx, d.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				return classify(obj.Err, "listing objects under %s", p)
			}
			rel, ok := d.relName(obj.Key)
			if !ok {
				continue
			}
			if err := d.seen(ctx, h, rel, obj); err != nil {
				d.logger.Printf("ERROR scanning %s: %s", rel, err)
			}
		}
	}
	return nil
}

func (d *Driver) seen(ctx context.Context, h driver.Handle, rel string, obj minio.ObjectInfo) error {
	f, err := h.GetFileByPath(ctx, rel)
	if stderrs.Is(err, meta.ErrNotFound) {
		f = h.NewFile(rel, obj.Size)
		if f == nil {
			return nil
		}
	} else if err != nil {
		return err
	} else if f.Extra[ETagKey] == obj.ETag {
		return nil
	}

	f.Size = obj.Size
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[ETagKey] = obj.ETag
	return h.UpdateFile(ctx, f)
}

func (d *Driver) GetChunk(ctx context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	if offset >= f.Size {
		return []byte{}, nil
	}
	name := d.objName(f.Path)

	var opts minio.GetObjectOptions
	if err := opts.SetRange(offset, offset+size-1); err != nil {
		return nil, driver.DriverErrorf("bad range %d+%d: %s", offset, size, err)
	}
	obj, err := d.core.Client.GetObject(ctx, d.bucket, name, opts)
	if err != nil {
		return nil, classify(err, "getting %s", name)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if minio.ToErrorResponse(err).Code == "InvalidRange" {
		return []byte{}, nil
	}
	return data, classify(err, "reading %s at offset %d", name, offset)
}

// upload finds the multipart upload in progress for name.
func (d *Driver) upload(ctx context.Context, name string) (string, error) {
	d.mu.Lock()
	id, ok := d.uploads[name]
	d.mu.Unlock()
	if ok {
		return id, nil
	}

	res, err := d.core.ListMultipartUploads(ctx, d.bucket, name, "", "", "", 1000)
	if err != nil {
		return "", classify(err, "listing uploads of %s", name)
	}
	var latest minio.ObjectMultipartInfo
	for _, u := range res.Uploads {
		if u.Key == name && u.Initiated.After(latest.Initiated) {
			latest = u
		}
	}
	if latest.UploadID == "" {
		return "", nil
	}

	d.mu.Lock()
	d.uploads[name] = latest.UploadID
	d.mu.Unlock()
	return latest.UploadID, nil
}

func (d *Driver) forget(name string) {
	d.mu.Lock()
	delete(d.uploads, name)
	d.mu.Unlock()
}

// StartUpload begins a new multipart upload, abandoning any earlier one.
func (d *Driver) StartUpload(ctx context.Context, f *meta.File) error {
	if err := d.AbortUpload(ctx, f); err != nil {
		return err
	}
	name := d.objName(f.Path)
	id, err := d.core.NewMultipartUpload(ctx, d.bucket, name, minio.PutObjectOptions{ContentType: f.Mimetype})
	if err != nil {
		return classify(err, "starting upload of %s", name)
	}
	d.mu.Lock()
	d.uploads[name] = id
	d.mu.Unlock()
	return nil
}

// RestartUpload resumes the multipart upload of f,
// provided its parts cover offset exactly.
func (d *Driver) RestartUpload(ctx context.Context, f *meta.File, offset int64) error {
	name := d.objName(f.Path)
	id, err := d.upload(ctx, name)
	if err != nil {
		return err
	}
	if id == "" {
		return driver.DriverErrorf("no upload of %s in progress", name)
	}
	parts, err := d.parts(ctx, name, id)
	if err != nil {
		return err
	}
	if _, ok := covered(parts, offset); !ok {
		return driver.DriverErrorf("parts of %s do not cover offset %d", name, offset)
	}
	return nil
}

// covered tells whether parts, numbered from 1 without a gap, add up to exactly offset.
// It also returns how many of them that takes.
func covered(parts []minio.ObjectPart, offset int64) (int, bool) {
	var have int64
	for i, part := range parts {
		if have == offset {
			return i, true
		}
		if part.PartNumber != i+1 {
			return 0, false
		}
		have += part.Size
	}
	return len(parts), have == offset
}

func (d *Driver) parts(ctx context.Context, name, id string) ([]minio.ObjectPart, error) {
	var (
		result []minio.ObjectPart
		marker int
	)
	for {
		res, err := d.core.ListObjectParts(ctx, d.bucket, name, id, marker, 1000)
		if err != nil {
			return nil, classify(err, "listing parts of %s", name)
		}
		result = append(result, res.ObjectParts...)
		if !res.IsTruncated {
			break
		}
		marker = res.NextPartNumberMarker
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PartNumber < result[j].PartNumber })
	return result, nil
}

func (d *Driver) UploadChunk(ctx context.Context, f *meta.File, offset int64, data []byte) error {
	name := d.objName(f.Path)
	id, err := d.upload(ctx, name)
	if err != nil {
		return err
	}
	if id == "" {
		return driver.DriverErrorf("no upload of %s in progress", name)
	}
	chunk := d.chunkSize()
	if offset%chunk != 0 {
		return driver.DriverErrorf("offset %d of %s is not a multiple of the part size %d", offset, name, chunk)
	}
	partID := int(offset/chunk) + 1
	_, err = d.core.PutObjectPart(ctx, d.bucket, name, id, partID, bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
	return classify(err, "uploading part %d of %s", partID, name)
}

// EndUpload completes the multipart upload.
// An empty file has no parts, so it is written as a plain object instead.
func (d *Driver) EndUpload(ctx context.Context, f *meta.File) error {
	name := d.objName(f.Path)
	id, err := d.upload(ctx, name)
	if err != nil {
		return err
	}

	var parts []minio.ObjectPart
	if id != "" {
		if parts, err = d.parts(ctx, name, id); err != nil {
			return err
		}
		if n, ok := covered(parts, f.Size); ok {
			parts = parts[:n]
		}
	}

	var info minio.UploadInfo
	if len(parts) == 0 {
		if err = d.AbortUpload(ctx, f); err != nil {
			return err
		}
		info, err = d.core.Client.PutObject(ctx, d.bucket, name, bytes.NewReader(nil), 0, minio.PutObjectOptions{ContentType: f.Mimetype})
		if err != nil {
			return classify(err, "writing %s", name)
		}
	} else {
		var complete []minio.CompletePart
		for _, part := range parts {
			complete = append(complete, minio.CompletePart{PartNumber: part.PartNumber, ETag: part.ETag})
		}
		info, err = d.core.CompleteMultipartUpload(ctx, d.bucket, name, id, complete, minio.PutObjectOptions{ContentType: f.Mimetype})
		if err != nil {
			return classify(err, "completing upload of %s", name)
		}
		d.forget(name)
	}

	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[ETagKey] = info.ETag
	return nil
}

func (d *Driver) AbortUpload(ctx context.Context, f *meta.File) error {
	name := d.objName(f.Path)
	id, err := d.upload(ctx, name)
	if err != nil || id == "" {
		return err
	}
	d.forget(name)
	err = d.core.AbortMultipartUpload(ctx, d.bucket, name, id)
	if err != nil && !notFound(err) {
		return classify(err, "aborting upload of %s", name)
	}
	return nil
}

func (d *Driver) DeleteFile(ctx context.Context, f *meta.File) error {
	name := d.objName(f.Path)
	err := d.core.Client.RemoveObject(ctx, d.bucket, name, minio.RemoveObjectOptions{})
	if err != nil && !notFound(err) {
		return classify(err, "removing %s", name)
	}
	return nil
}

func (d *Driver) MoveFile(ctx context.Context, oldFile, newFile *meta.File) error {
	var (
		oldName = d.objName(oldFile.Path)
		newName = d.objName(newFile.Path)
	)
	info, err := d.core.Client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: d.bucket, Object: newName},
		minio.CopySrcOptions{Bucket: d.bucket, Object: oldName},
	)
	if err != nil {
		return classify(err, "copying %s to %s", oldName, newName)
	}
	if newFile.Extra == nil {
		newFile.Extra = make(map[string]string)
	}
	newFile.Extra[ETagKey] = info.ETag

	err = d.core.Client.RemoveObject(ctx, d.bucket, oldName, minio.RemoveObjectOptions{})
	if err != nil && !notFound(err) {
		return classify(err, "removing %s", oldName)
	}
	return nil
}

var manifest = driver.Manifest{
	Name:        "s3",
	Description: "Keeps files as objects in an S3-compatible bucket.",
	Options: map[string]driver.Option{
		"endpoint":   {Type: driver.String, Description: "host[:port] of the service"},
		"bucket":     {Type: driver.String, Description: "bucket name"},
		"prefix":     {Type: driver.String, Default: "", Description: "object-name prefix of the service's folders"},
		"access_key": {Type: driver.String, Description: "access key id"},
		"secret_key": {Type: driver.String, Description: "secret access key"},
		"region":     {Type: driver.String, Default: "", Description: "bucket region"},
		"secure":     {Type: driver.Boolean, Default: true, Description: "use TLS"},
		"poll_s":     {Type: driver.Integer, Default: int64(0), Description: "seconds between rescans of the bucket (0 disables)"},
	},
}

func init() {
	driver.Register(manifest, func(_ context.Context, opts driver.Options) (driver.Driver, error) {
		client, err := minio.New(opts.String("endpoint"), &minio.Options{
			Creds:        credentials.NewStaticV4(opts.String("access_key"), opts.String("secret_key"), ""),
			Secure:       opts.Bool("secure"),
			Region:       opts.String("region"),
			BucketLookup: minio.BucketLookupAuto,
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating s3 client")
		}
		poll := time.Duration(opts.Int("poll_s")) * time.Second
		return New(client, opts.String("bucket"), opts.String("prefix"), poll, nil), nil
	})
}
