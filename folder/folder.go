// Package folder implements folders, the hub's sync scopes,
// and the rule engine that decides which services receive a changed file.
package folder

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/meta"
)

// Folder is a named sync scope together with every service participating in it.
type Folder struct {
	Name     string
	Options  *Options
	Services map[string]*ServiceFolder
}

// ServiceFolder is one service's view of a folder:
// where the service keeps it,
// and that service's own options for it.
type ServiceFolder struct {
	Name    string   `json:"-"`
	Path    string   `json:"path"`
	Options *Options `json:"options,omitempty"`
}

// Targets computes the services that must receive f after a change made by source.
// The result is empty if the folder rejects f,
// or if source's options reject providing it;
// the returned Reason then says why.
// Otherwise it holds every other participant whose options accept receiving f,
// sorted by name.
// The source is never a target.
func (fo *Folder) Targets(f *meta.File, source string) ([]string, Reason) {
	if ok, reason := AssertOptions(fo.Options, f, AnyPerm); !ok {
		return nil, reason
	}
	if sf, ok := fo.Services[source]; ok {
		if ok, reason := AssertOptions(sf.Options, f, Provide); !ok {
			return nil, reason
		}
	}

	var result []string
	for name, sf := range fo.Services {
		if name == source {
			continue
		}
		if ok, _ := AssertOptions(sf.Options, f, Receive); ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result, OK
}

func (sf *ServiceFolder) root() string {
	if sf.Path == "" {
		return "."
	}
	return path.Clean(sf.Path)
}

// Contains tells whether p lies inside the folder.
func (sf *ServiceFolder) Contains(p string) bool {
	_, ok := sf.Relpath(p)
	return ok
}

// Relpath converts p to a filename relative to the folder.
// The second result is false if p does not lie inside the folder.
func (sf *ServiceFolder) Relpath(p string) (string, bool) {
	root, p := sf.root(), path.Clean(p)
	if root == "." {
		if p == "." || p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
			return "", false
		}
		return p, true
	}
	if !strings.HasPrefix(p, root+"/") {
		return "", false
	}
	return strings.TrimPrefix(p, root+"/"), true
}

// Join converts a filename relative to the folder into a path.
func (sf *ServiceFolder) Join(filename string) string {
	return path.Join(sf.root(), filename)
}

// Deepest finds the folder containing p whose path is the longest,
// so nested folders take precedence over their parents.
// It returns nil if no folder contains p.
func Deepest(folders []*ServiceFolder, p string) *ServiceFolder {
	var best *ServiceFolder
	for _, sf := range folders {
		if !sf.Contains(p) {
			continue
		}
		if best == nil || len(sf.root()) > len(best.root()) || best.root() == "." {
			best = sf
		}
	}
	return best
}

const servicesKey = "services"

func folderKey(name string) string {
	return "folder:" + name
}

func serviceFolderPrefix(service string) string {
	return meta.ServicePrefix(service) + "folder:"
}

// SaveFolder stores the folder-wide options of the named folder.
func SaveFolder(ctx context.Context, s kv.Store, name string, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	return errors.Wrapf(kv.PutJSON(ctx, s, folderKey(name), opts), "saving folder %s", name)
}

// SaveServiceFolder stores a service's view of a folder.
func SaveServiceFolder(ctx context.Context, s kv.Store, service string, sf *ServiceFolder) error {
	return errors.Wrapf(kv.PutJSON(ctx, s, serviceFolderPrefix(service)+sf.Name, sf), "saving folder %s of %s", sf.Name, service)
}

// SaveServices stores the list of services in the deployment.
func SaveServices(ctx context.Context, s kv.Store, names []string) error {
	names = append([]string(nil), names...)
	sort.Strings(names)
	return errors.Wrap(kv.PutJSON(ctx, s, servicesKey, names), "saving services")
}

// Services lists the services in the deployment.
func Services(ctx context.Context, s kv.Store) ([]string, error) {
	var names []string
	err := kv.GetJSON(ctx, s, servicesKey, &names)
	if stderrs.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	return names, errors.Wrap(err, "loading services")
}

// LoadService loads a service's views of the folders it participates in,
// sorted by folder name.
func LoadService(ctx context.Context, s kv.Store, service string) ([]*ServiceFolder, error) {
	var (
		prefix = serviceFolderPrefix(service)
		result []*ServiceFolder
	)
	err := s.Range(ctx, kv.Range{Prefix: prefix}, func(key string, value []byte) error {
		sf := &ServiceFolder{Name: strings.TrimPrefix(key, prefix)}
		if err := json.Unmarshal(value, sf); err != nil {
			return errors.Wrapf(err, "decoding %s", key)
		}
		result = append(result, sf)
		return nil
	})
	return result, errors.Wrapf(err, "loading folders of %s", service)
}

// Load loads every folder with its participants.
func Load(ctx context.Context, s kv.Store) (map[string]*Folder, error) {
	services, err := Services(ctx, s)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Folder)
	get := func(name string) (*Folder, error) {
		if fo, ok := result[name]; ok {
			return fo, nil
		}
		fo := &Folder{Name: name, Services: make(map[string]*ServiceFolder)}
		var opts Options
		err := kv.GetJSON(ctx, s, folderKey(name), &opts)
		switch {
		case stderrs.Is(err, kv.ErrNotFound):
		case err != nil:
			return nil, errors.Wrapf(err, "loading folder %s", name)
		default:
			fo.Options = &opts
		}
		result[name] = fo
		return fo, nil
	}

	for _, svc := range services {
		sfs, err := LoadService(ctx, s, svc)
		if err != nil {
			return nil, err
		}
		for _, sf := range sfs {
			fo, err := get(sf.Name)
			if err != nil {
				return nil, err
			}
			fo.Services[svc] = sf
		}
	}
	return result, nil
}
