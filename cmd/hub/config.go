package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/wake"
)

func (c maincmd) openStore(ctx context.Context) (kv.Store, error) {
	if c.conf.Store == nil {
		return nil, errors.New("config missing `store` section")
	}
	typ, ok := c.conf.Store["type"].(string)
	if !ok {
		return nil, fmt.Errorf("config `store` section missing `type` parameter")
	}
	s, err := kv.Create(ctx, typ, c.conf.Store)
	return s, errors.Wrapf(err, "creating %s-type store", typ)
}

// busFor finds the wake bus that goes with s.
// Only a remote store carries one;
// other stores can only be shared in-process.
func busFor(s kv.Store) (wake.Bus, error) {
	if bus, ok := s.(wake.Bus); ok {
		return bus, nil
	}
	return nil, errors.New("store does not carry a wake bus; use an rpc-type store, or the serve subcommand")
}
