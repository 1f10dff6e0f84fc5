// Package meta is the hub's metadata model:
// files, their owners and up-to-date services,
// in-flight transfers,
// and the queued changes and events that drive synchronization.
//
// Every record lives in a kv.Store under the keys built by the functions in keys.go.
// A file's facts are spread over several keys
// (base record, one owner key per service, one uptodate key per service, one extra key per service)
// so that different services never overwrite each other's state.
package meta

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
)

// ErrNotFound is returned when a file record does not exist.
var ErrNotFound = kv.ErrNotFound

// Namespace is the UUID namespace of file ids.
var Namespace = uuid.MustParse("2a7b4d0c-7f0e-5c1a-9b8e-6e1f3d2c4b5a")

// FID computes the id of the file with the given name in the given folder.
func FID(folderName, filename string) string {
	return uuid.NewSHA1(Namespace, []byte(folderName+"\x00"+filename)).String()
}

// File is the metadata of one file in one folder.
type File struct {
	FID        string `json:"-"`
	Filename   string `json:"filename"`
	FolderName string `json:"folder_name"`
	Size       int64  `json:"size"`
	Mimetype   string `json:"mimetype"`

	// Owners are the services that have ever held a copy of the file.
	Owners map[string]bool `json:"-"`

	// Uptodate maps each service currently holding a byte-identical copy to the time it got it.
	Uptodate map[string]time.Time `json:"-"`

	// Extra is the private state of the service that loaded this File.
	// Drivers may keep anything they like here.
	Extra map[string]string `json:"-"`

	// Path is where the service that loaded this File keeps it.
	// It is computed by the service from its folder configuration and never stored.
	Path string `json:"-"`

	// Service is the service whose view this is (see Extra and Path).
	Service string `json:"-"`
}

// New produces a File record for a new file.
// Its mimetype is guessed from its name.
func New(folderName, filename string, size int64) *File {
	return &File{
		FID:        FID(folderName, filename),
		Filename:   filename,
		FolderName: folderName,
		Size:       size,
		Mimetype:   GuessMimetype(filename),
		Owners:     make(map[string]bool),
		Uptodate:   make(map[string]time.Time),
		Extra:      make(map[string]string),
	}
}

// GuessMimetype guesses the mimetype of a file from its extension.
func GuessMimetype(filename string) string {
	if typ := mime.TypeByExtension(path.Ext(filename)); typ != "" {
		if i := strings.Index(typ, ";"); i >= 0 {
			typ = typ[:i]
		}
		return typ
	}
	return "application/octet-stream"
}

// IsUptodate tells whether service holds a current copy of f.
func (f *File) IsUptodate(service string) bool {
	_, ok := f.Uptodate[service]
	return ok
}

// OwnerList is f.Owners as a sorted slice.
func (f *File) OwnerList() []string {
	return sortedKeys(f.Owners)
}

// UptodateList is the set of up-to-date services as a sorted slice.
func (f *File) UptodateList() []string {
	var result []string
	for s := range f.Uptodate {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

func sortedKeys(m map[string]bool) []string {
	var result []string
	for k, v := range m {
		if v {
			result = append(result, k)
		}
	}
	sort.Strings(result)
	return result
}

// Get loads the file with the given id as seen by service.
// If service is empty, no per-service extra is loaded.
func Get(ctx context.Context, s kv.Store, fid, service string) (*File, error) {
	f := &File{
		FID:      fid,
		Owners:   make(map[string]bool),
		Uptodate: make(map[string]time.Time),
		Extra:    make(map[string]string),
		Service:  service,
	}
	err := kv.GetJSON(ctx, s, FileKey(fid), f)
	if stderrs.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading file %s", fid)
	}

	prefix := FileKey(fid) + ":"
	err = s.Range(ctx, kv.Range{Prefix: prefix}, func(key string, value []byte) error {
		kind, svc := splitFileSubkey(strings.TrimPrefix(key, prefix))
		switch kind {
		case "owner":
			f.Owners[svc] = true
		case "uptodate":
			t, err := time.Parse(time.RFC3339Nano, string(value))
			if err != nil {
				return errors.Wrapf(err, "parsing uptodate time for %s", svc)
			}
			f.Uptodate[svc] = t
		case "extra":
			if svc == service && len(value) > 0 {
				if err := json.Unmarshal(value, &f.Extra); err != nil {
					return errors.Wrapf(err, "decoding extra for %s", svc)
				}
			}
		}
		return nil
	})
	return f, errors.Wrapf(err, "loading file %s", fid)
}

// GetByPath loads the file with the given name in the given folder.
func GetByPath(ctx context.Context, s kv.Store, folderName, filename, service string) (*File, error) {
	return Get(ctx, s, FID(folderName, filename), service)
}

func splitFileSubkey(sub string) (kind, service string) {
	if i := strings.Index(sub, ":"); i >= 0 {
		return sub[:i], sub[i+1:]
	}
	return sub, ""
}

// PutBase adds to b the writes of f's base record and path index.
func PutBase(b *kv.Batch, f *File) error {
	if err := b.PutJSON(FileKey(f.FID), f); err != nil {
		return errors.Wrapf(err, "encoding file %s", f.FID)
	}
	b.Put(PathKey(f.FolderName, f.Filename), []byte(f.FID))
	return nil
}

// PutExtra adds to b the write of f.Extra for service.
func PutExtra(b *kv.Batch, f *File, service string) error {
	extra := f.Extra
	if extra == nil {
		extra = map[string]string{}
	}
	return errors.Wrapf(b.PutJSON(ExtraKey(f.FID, service), extra), "encoding extra of %s for %s", f.FID, service)
}

// PutOwner adds to b the write of an owner key.
func PutOwner(b *kv.Batch, fid, service string) {
	b.Put(OwnerKey(fid, service), []byte{})
}

// PutUptodate adds to b the writes that mark service up to date for f, as of t.
// Service becomes an owner too, preserving uptodate ⊆ owners.
func PutUptodate(b *kv.Batch, f *File, service string, t time.Time) {
	if f.Owners == nil {
		f.Owners = make(map[string]bool)
	}
	if f.Uptodate == nil {
		f.Uptodate = make(map[string]time.Time)
	}
	PutOwner(b, f.FID, service)
	b.Put(UptodateKey(f.FID, service), []byte(t.UTC().Format(time.RFC3339Nano)))
	f.Owners[service] = true
	f.Uptodate[service] = t
}

// WriteUpdate records that service has a new version of f.
// In one atomic batch it writes f's base record, path index, and service's extra;
// makes service an owner;
// and makes service the only up-to-date service.
func WriteUpdate(ctx context.Context, s kv.Store, f *File, service string, now time.Time) error {
	b := kv.NewBatch(true)
	prefix := FileKey(f.FID) + ":uptodate:"
	err := s.Range(ctx, kv.Range{Prefix: prefix, KeysOnly: true}, func(key string, _ []byte) error {
		if strings.TrimPrefix(key, prefix) != service {
			b.Delete(key)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "listing up-to-date services of %s", f.FID)
	}
	f.Uptodate = make(map[string]time.Time)
	if f.Owners == nil {
		f.Owners = make(map[string]bool)
	}
	if err := PutBase(b, f); err != nil {
		return err
	}
	if err := PutExtra(b, f, service); err != nil {
		return err
	}
	PutUptodate(b, f, service, now)
	return errors.Wrapf(s.Write(ctx, b), "writing update of %s", f.FID)
}

// AddOwners makes each of services an owner of the file with the given id.
func AddOwners(ctx context.Context, s kv.Store, fid string, services ...string) error {
	if len(services) == 0 {
		return nil
	}
	b := kv.NewBatch(true)
	for _, svc := range services {
		PutOwner(b, fid, svc)
	}
	return errors.Wrapf(s.Write(ctx, b), "adding owners to %s", fid)
}

// Relinquish removes service from the owners and up-to-date services of the file with the given id,
// and deletes service's extra for it.
// If no owners remain,
// the file record is deleted entirely,
// and Relinquish reports true.
func Relinquish(ctx context.Context, s kv.Store, fid, service string) (bool, error) {
	b := kv.NewBatch(true)
	b.Delete(OwnerKey(fid, service))
	b.Delete(UptodateKey(fid, service))
	b.Delete(ExtraKey(fid, service))
	if err := s.Write(ctx, b); err != nil {
		return false, errors.Wrapf(err, "relinquishing %s for %s", fid, service)
	}

	var owners int
	err := s.Range(ctx, kv.Range{Prefix: FileKey(fid) + ":owner:", KeysOnly: true}, func(string, []byte) error {
		owners++
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "counting owners of %s", fid)
	}
	if owners > 0 {
		return false, nil
	}
	return true, Remove(ctx, s, fid)
}

// Remove deletes every record of the file with the given id:
// base record, path index, and all per-service keys.
func Remove(ctx context.Context, s kv.Store, fid string) error {
	b := kv.NewBatch(true)

	var f File
	err := kv.GetJSON(ctx, s, FileKey(fid), &f)
	switch {
	case stderrs.Is(err, kv.ErrNotFound):
	case err != nil:
		return errors.Wrapf(err, "loading file %s", fid)
	default:
		b.Delete(PathKey(f.FolderName, f.Filename))
	}
	b.Delete(FileKey(fid))

	err = s.Range(ctx, kv.Range{Prefix: FileKey(fid) + ":", KeysOnly: true}, func(key string, _ []byte) error {
		b.Delete(key)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "listing keys of %s", fid)
	}
	return errors.Wrapf(s.Write(ctx, b), "removing file %s", fid)
}

// Clone produces the record of f renamed to newFilename in newFolder.
// Every service's extra is copied to the new id
// (adapters often key remote state by something other than the name),
// and size and mimetype carry over.
// Owners and up-to-date services do not;
// the caller decides those.
// Nothing is written to the store except the copied extras.
func Clone(ctx context.Context, s kv.Store, f *File, newFolder, newFilename string) (*File, error) {
	nf := &File{
		FID:        FID(newFolder, newFilename),
		Filename:   newFilename,
		FolderName: newFolder,
		Size:       f.Size,
		Mimetype:   f.Mimetype,
		Owners:     make(map[string]bool),
		Uptodate:   make(map[string]time.Time),
		Extra:      make(map[string]string),
		Service:    f.Service,
	}
	for k, v := range f.Extra {
		nf.Extra[k] = v
	}

	b := kv.NewBatch(true)
	prefix := FileKey(f.FID) + ":extra:"
	err := s.Range(ctx, kv.Range{Prefix: prefix}, func(key string, value []byte) error {
		b.Put(ExtraKey(nf.FID, strings.TrimPrefix(key, prefix)), value)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing extras of %s", f.FID)
	}
	if b.Len() > 0 {
		if err = s.Write(ctx, b); err != nil {
			return nil, errors.Wrapf(err, "copying extras of %s", f.FID)
		}
	}
	return nf, nil
}

// ForEach calls fn on every file in the store, in fid order.
// The files carry no per-service extra.
func ForEach(ctx context.Context, s kv.Store, fn func(*File) error) error {
	var fids []string
	err := s.Range(ctx, kv.Range{Prefix: "file:", KeysOnly: true}, func(key string, _ []byte) error {
		rest := strings.TrimPrefix(key, "file:")
		if !strings.Contains(rest, ":") {
			fids = append(fids, rest)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "listing files")
	}
	for _, fid := range fids {
		f, err := Get(ctx, s, fid, "")
		if stderrs.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err = fn(f); err != nil {
			return err
		}
	}
	return nil
}
