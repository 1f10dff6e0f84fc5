package main

import (
	"context"
	stderrs "errors"

	"github.com/bobg/hub/referee"
)

func (c maincmd) referee(ctx context.Context, _ []string) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	bus, err := busFor(s)
	if err != nil {
		return err
	}

	err = referee.New(s, bus, nil).Run(ctx)
	if stderrs.Is(err, context.Canceled) {
		return nil
	}
	return err
}
