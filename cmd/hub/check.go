package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobg/hub/driver"
)

// check validates the config against the driver manifests
// and prints each service's effective options.
func (c maincmd) check(_ context.Context, listDrivers bool, _ []string) error {
	if listDrivers {
		for _, name := range driver.Names() {
			m, _ := driver.Lookup(name)
			fmt.Printf("%s: %s\n", name, m.Description)
			for _, opt := range sortedOptions(m) {
				o := m.Options[opt]
				def := "required"
				if o.Default != nil {
					def = fmt.Sprintf("default %v", o.Default)
				}
				fmt.Printf("  %s (%s, %s): %s\n", opt, o.Type, def, o.Description)
			}
		}
		return nil
	}

	opts, err := c.conf.Check()
	if err != nil {
		return err
	}
	for _, name := range c.conf.ServiceNames() {
		fmt.Printf("%s (%s):\n", name, c.conf.Services[name].Driver)
		o := opts[name]
		var keys []string
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s = %v\n", k, o[k])
		}
	}
	fmt.Println("OK")
	return nil
}

func sortedOptions(m driver.Manifest) []string {
	var result []string
	for name := range m.Options {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
