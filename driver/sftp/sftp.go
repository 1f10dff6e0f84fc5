// Package sftp implements a driver for a directory tree on an SFTP server.
package sftp

import (
	"context"
	stderrs "errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

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
	_ io.Closer              = &Driver{}
)

// MtimeKey is the extra key under which the driver remembers a file's modification time.
const MtimeKey = "mtime"

// stagingDir is where partial uploads live, beneath the base directory.
const stagingDir = ".hub"

// Dialer opens an SFTP session.
// The returned Closer, if not nil, releases whatever carries the session.
type Dialer func() (*sftp.Client, io.Closer, error)

// Driver keeps files beneath a base directory on an SFTP server.
// It connects on first use and reconnects after losing the connection.
type Driver struct {
	dial   Dialer
	base   string
	poll   time.Duration
	logger *log.Logger

	mu     sync.Mutex
	client *sftp.Client
	carry  io.Closer
}

// New produces a Driver keeping files beneath base, connecting with dial.
// When poll is positive,
// the driver rescans its folders at that interval for files changed by others.
func New(dial Dialer, base string, poll time.Duration, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		dial:   dial,
		base:   path.Clean(base),
		poll:   poll,
		logger: logger,
	}
}

func (d *Driver) conn() (*sftp.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}
	client, carry, err := d.dial()
	if err != nil {
		return nil, &driver.ServiceError{Err: errors.Wrap(err, "connecting")}
	}
	d.client, d.carry = client, carry
	return client, nil
}

// reset drops the connection so the next call reconnects.
func (d *Driver) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
}

func (d *Driver) closeLocked() error {
	var err error
	if d.client != nil {
		err = d.client.Close()
		d.client = nil
	}
	if d.carry != nil {
		if err2 := d.carry.Close(); err == nil {
			err = err2
		}
		d.carry = nil
	}
	return err
}

// Close closes the connection, if any.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeLocked()
}

// classify converts an sftp error to the driver error taxonomy,
// dropping the connection if it was lost.
func (d *Driver) classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if stderrs.Is(err, fs.ErrNotExist) {
		return &driver.DriverError{Err: errors.Wrap(err, msg)}
	}
	if stderrs.Is(err, sftp.ErrSSHFxConnectionLost) || stderrs.Is(err, io.EOF) {
		d.reset()
	}
	return &driver.ServiceError{Err: errors.Wrap(err, msg)}
}

func (d *Driver) abs(p string) string {
	return path.Join(d.base, p)
}

func (d *Driver) staging(f *meta.File) string {
	return path.Join(d.base, stagingDir, f.FID)
}

func mtime(info os.FileInfo) string {
	return strconv.FormatInt(info.ModTime().Unix(), 10)
}

// Start scans the folders of the service for files the hub has not seen,
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
					d.logger.Printf("ERROR scanning %s: %s", d.base, err)
				}
			}
		}
	}()
	return nil
}

func (d *Driver) scan(ctx context.Context, h driver.Handle) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	for _, p := range h.Paths() {
		if err = d.scanDir(ctx, client, h, p); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) scanDir(ctx context.Context, client *sftp.Client, h driver.Handle, rel string) error {
	infos, err := client.ReadDir(d.abs(rel))
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return d.classify(err, "reading dir %s", rel)
	}
	for _, info := range infos {
		child := path.Join(rel, info.Name())
		switch {
		case info.IsDir():
			if child == stagingDir {
				continue
			}
			if err = d.scanDir(ctx, client, h, child); err != nil {
				return err
			}

		case info.Mode().IsRegular():
			if err = d.seen(ctx, h, child, info); err != nil {
				d.logger.Printf("ERROR scanning %s: %s", child, err)
			}
		}
	}
	return nil
}

func (d *Driver) seen(ctx context.Context, h driver.Handle, rel string, info os.FileInfo) error {
	f, err := h.GetFileByPath(ctx, rel)
	if stderrs.Is(err, meta.ErrNotFound) {
		f = h.NewFile(rel, info.Size())
		if f == nil {
			return nil
		}
	} else if err != nil {
		return err
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

func (d *Driver) GetChunk(_ context.Context, f *meta.File, offset, size int64) ([]byte, error) {
	client, err := d.conn()
	if err != nil {
		return nil, err
	}
	fh, err := client.Open(d.abs(f.Path))
	if err != nil {
		return nil, d.classify(err, "opening %s", f.Path)
	}
	defer fh.Close()

	buf := make([]byte, size)
	n, err := fh.ReadAt(buf, offset)
	if err != nil && !stderrs.Is(err, io.EOF) {
		return nil, d.classify(err, "reading %s at offset %d", f.Path, offset)
	}
	return buf[:n], nil
}

func (d *Driver) StartUpload(_ context.Context, f *meta.File) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	name := d.staging(f)
	if err = client.MkdirAll(path.Dir(name)); err != nil {
		return d.classify(err, "creating staging dir")
	}
	fh, err := client.Create(name)
	if err != nil {
		return d.classify(err, "creating staging file for %s", f.Path)
	}
	return d.classify(fh.Close(), "closing staging file for %s", f.Path)
}

func (d *Driver) RestartUpload(_ context.Context, f *meta.File, offset int64) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	name := d.staging(f)
	info, err := client.Stat(name)
	if stderrs.Is(err, fs.ErrNotExist) {
		return driver.DriverErrorf("no partial upload of %s", f.Path)
	}
	if err != nil {
		return d.classify(err, "statting staging file for %s", f.Path)
	}
	if info.Size() < offset {
		return driver.DriverErrorf("partial upload of %s has %d bytes, need %d", f.Path, info.Size(), offset)
	}
	return d.classify(client.Truncate(name, offset), "truncating staging file for %s", f.Path)
}

func (d *Driver) UploadChunk(_ context.Context, f *meta.File, offset int64, data []byte) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	fh, err := client.OpenFile(d.staging(f), os.O_WRONLY)
	if stderrs.Is(err, fs.ErrNotExist) {
		return driver.DriverErrorf("no upload of %s in progress", f.Path)
	}
	if err != nil {
		return d.classify(err, "opening staging file for %s", f.Path)
	}
	if _, err = fh.WriteAt(data, offset); err != nil {
		fh.Close()
		return d.classify(err, "writing %s at offset %d", f.Path, offset)
	}
	return d.classify(fh.Close(), "closing staging file for %s", f.Path)
}

// EndUpload moves the staged file into place.
// A missing staging file is an empty upload.
func (d *Driver) EndUpload(_ context.Context, f *meta.File) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	name := d.staging(f)
	if _, err = client.Stat(name); stderrs.Is(err, fs.ErrNotExist) {
		if err = client.MkdirAll(path.Dir(name)); err != nil {
			return d.classify(err, "creating staging dir")
		}
		fh, err := client.Create(name)
		if err != nil {
			return d.classify(err, "creating empty staging file for %s", f.Path)
		}
		fh.Close()
	}
	return d.place(client, name, f)
}

func (d *Driver) place(client *sftp.Client, from string, f *meta.File) error {
	dest := d.abs(f.Path)
	if err := client.MkdirAll(path.Dir(dest)); err != nil {
		return d.classify(err, "making dir for %s", f.Path)
	}
	if err := client.PosixRename(from, dest); err != nil {
		// The server may lack the posix-rename extension,
		// and plain rename refuses to replace an existing file.
		if err2 := client.Remove(dest); err2 != nil && !stderrs.Is(err2, fs.ErrNotExist) {
			return d.classify(err, "renaming into %s", f.Path)
		}
		if err = client.Rename(from, dest); err != nil {
			return d.classify(err, "renaming into %s", f.Path)
		}
	}

	info, err := client.Stat(dest)
	if err != nil {
		return d.classify(err, "statting %s", f.Path)
	}
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[MtimeKey] = mtime(info)
	return nil
}

func (d *Driver) AbortUpload(_ context.Context, f *meta.File) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	err = client.Remove(d.staging(f))
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil
	}
	return d.classify(err, "removing staging file for %s", f.Path)
}

func (d *Driver) DeleteFile(_ context.Context, f *meta.File) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	err = client.Remove(d.abs(f.Path))
	if stderrs.Is(err, fs.ErrNotExist) {
		return nil
	}
	return d.classify(err, "removing %s", f.Path)
}

func (d *Driver) MoveFile(_ context.Context, oldFile, newFile *meta.File) error {
	client, err := d.conn()
	if err != nil {
		return err
	}
	src := d.abs(oldFile.Path)
	if _, err = client.Stat(src); err != nil {
		return d.classify(err, "statting %s", oldFile.Path)
	}
	return d.place(client, src, newFile)
}

// SSHDialer dials an SFTP session over SSH.
func SSHDialer(addr string, conf *ssh.ClientConfig) Dialer {
	return func() (*sftp.Client, io.Closer, error) {
		conn, err := ssh.Dial("tcp", addr, conf)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "dialing %s", addr)
		}
		client, err := sftp.NewClient(conn)
		if err != nil {
			conn.Close()
			return nil, nil, errors.Wrap(err, "starting sftp session")
		}
		return client, conn, nil
	}
}

var manifest = driver.Manifest{
	Name:        "sftp",
	Description: "Keeps files in a directory on an SFTP server.",
	Options: map[string]driver.Option{
		"host":        {Type: driver.String, Description: "server host"},
		"port":        {Type: driver.Integer, Default: int64(22), Description: "server port"},
		"user":        {Type: driver.String, Description: "login name"},
		"password":    {Type: driver.String, Default: "", Description: "password"},
		"key_file":    {Type: driver.String, Default: "", Description: "PEM private key file"},
		"known_hosts": {Type: driver.String, Default: "", Description: "known_hosts file for checking the server's host key"},
		"insecure":    {Type: driver.Boolean, Default: false, Description: "skip host key checking when known_hosts is not set"},
		"base":        {Type: driver.String, Default: ".", Description: "directory holding the service's folders"},
		"poll_s":      {Type: driver.Integer, Default: int64(0), Description: "seconds between rescans of the server (0 disables)"},
	},
}

func sshConfig(opts driver.Options) (*ssh.ClientConfig, error) {
	conf := &ssh.ClientConfig{
		User:    opts.String("user"),
		Timeout: 30 * time.Second,
	}

	if keyFile := opts.String("key_file"); keyFile != "" {
		pem, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", keyFile)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, &driver.ConfigError{Option: "key_file", Msg: err.Error()}
		}
		conf.Auth = append(conf.Auth, ssh.PublicKeys(signer))
	}
	if pw := opts.String("password"); pw != "" {
		conf.Auth = append(conf.Auth, ssh.Password(pw))
	}
	if len(conf.Auth) == 0 {
		return nil, &driver.ConfigError{Msg: "one of password and key_file is required"}
	}

	switch kh := opts.String("known_hosts"); {
	case kh != "":
		cb, err := knownhosts.New(kh)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", kh)
		}
		conf.HostKeyCallback = cb
	case opts.Bool("insecure"):
		conf.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	default:
		return nil, &driver.ConfigError{Option: "known_hosts", Msg: "required unless insecure is set"}
	}

	return conf, nil
}

func init() {
	driver.Register(manifest, func(_ context.Context, opts driver.Options) (driver.Driver, error) {
		conf, err := sshConfig(opts)
		if err != nil {
			return nil, err
		}
		addr := fmt.Sprintf("%s:%d", strings.TrimSpace(opts.String("host")), opts.Int("port"))
		poll := time.Duration(opts.Int("poll_s")) * time.Second
		return New(SSHDialer(addr, conf), opts.String("base"), poll, nil), nil
	})
}
