package driver

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Factory creates an adapter from validated options.
type Factory func(context.Context, Options) (Driver, error)

type entry struct {
	m Manifest
	f Factory
}

var registry = make(map[string]entry)

// Register makes an adapter type available to Create under m.Name.
// Adapter packages call it from their init functions.
func Register(m Manifest, f Factory) {
	registry[m.Name] = entry{m: m, f: f}
}

// Lookup finds the manifest of a registered adapter type.
func Lookup(name string) (Manifest, bool) {
	e, ok := registry[name]
	return e.m, ok
}

// Names lists the registered adapter types.
func Names() []string {
	var result []string
	for name := range registry {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Create validates options against the manifest of the named adapter type,
// then creates the adapter.
// It also returns the validated options.
func Create(ctx context.Context, name string, options map[string]interface{}) (Driver, Options, error) {
	e, ok := registry[name]
	if !ok {
		return nil, nil, fmt.Errorf("driver %s not found in registry", name)
	}
	opts, err := e.m.Validate(options)
	if err != nil {
		return nil, nil, err
	}
	d, err := e.f(ctx, opts)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating %s driver", name)
	}
	return d, opts, nil
}
