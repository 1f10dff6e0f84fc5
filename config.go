package hub

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/bobg/hub/driver"
	"github.com/bobg/hub/folder"
	"github.com/bobg/hub/kv"
)

// Config describes a deployment.
type Config struct {
	// Store is the metadata store configuration,
	// passed to kv.Create.
	// Its "type" entry names the store type.
	Store map[string]interface{} `json:"store"`

	// Folders maps each folder name to its folder-wide options.
	Folders map[string]*folder.Options `json:"folders"`

	Services map[string]*ServiceConfig `json:"services"`

	// Listen is the address where the store and wake bus are served
	// (see the "store" subcommand of cmd/hub).
	Listen string `json:"listen,omitempty"`

	// MaxWorkers bounds the concurrent workers of each service.
	MaxWorkers int `json:"max_workers,omitempty"`
}

// ServiceConfig describes one service.
type ServiceConfig struct {
	// Driver is the registered adapter type.
	Driver string `json:"driver"`

	// Options are the adapter options,
	// validated against the adapter's manifest.
	Options map[string]interface{} `json:"options,omitempty"`

	// Folders maps each folder the service participates in to the service's view of it.
	Folders map[string]*folder.ServiceFolder `json:"folders"`

	// Listen is the address where a standalone service serves its router.
	Listen string `json:"listen,omitempty"`

	// Instance, when set, is used instead of creating an adapter of type Driver.
	Instance driver.Driver `json:"-"`
}

// ReadConfig decodes a JSON config.
// Numbers decode as json.Number.
func ReadConfig(r io.Reader) (*Config, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var conf Config
	if err := dec.Decode(&conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return &conf, nil
}

// LoadConfig reads a JSON config file.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	conf, err := ReadConfig(f)
	return conf, errors.Wrapf(err, "reading config file %s", filename)
}

// ServiceNames lists the configured services in order.
func (c *Config) ServiceNames() []string {
	var result []string
	for name := range c.Services {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Check validates c:
// every service must name a registered adapter type (or carry an Instance),
// its options must satisfy the adapter's manifest,
// and every folder it joins must be declared.
// It returns the validated options of each service.
func (c *Config) Check() (map[string]driver.Options, error) {
	if len(c.Services) == 0 {
		return nil, errors.New("no services configured")
	}

	result := make(map[string]driver.Options)
	for _, name := range c.ServiceNames() {
		sc := c.Services[name]

		m, ok := driver.Lookup(sc.Driver)
		if !ok {
			if sc.Instance == nil {
				return nil, errors.Errorf("service %s: unknown driver %q", name, sc.Driver)
			}
			m = driver.Manifest{Name: sc.Driver}
		}
		opts, err := m.Validate(sc.Options)
		if err != nil {
			return nil, errors.Wrapf(err, "service %s", name)
		}
		result[name] = opts

		if len(sc.Folders) == 0 {
			return nil, errors.Errorf("service %s joins no folders", name)
		}
		for fname := range sc.Folders {
			if _, ok := c.Folders[fname]; !ok {
				return nil, errors.Errorf("service %s: unknown folder %s", name, fname)
			}
		}
	}
	return result, nil
}

// Setup writes the folder configuration of c into s,
// where the Referee and the services read it.
func Setup(ctx context.Context, s kv.Store, c *Config) error {
	for name, opts := range c.Folders {
		if err := folder.SaveFolder(ctx, s, name, opts); err != nil {
			return err
		}
	}
	for svc, sc := range c.Services {
		for name, sf := range sc.Folders {
			view := &folder.ServiceFolder{Name: name}
			if sf != nil {
				view.Path = sf.Path
				view.Options = sf.Options
			}
			if err := folder.SaveServiceFolder(ctx, s, svc, view); err != nil {
				return err
			}
		}
	}
	return folder.SaveServices(ctx, s, c.ServiceNames())
}
